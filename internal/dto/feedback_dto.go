package dto

import (
	"time"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

// FeedbackCreateRequest is the payload for submitting platform feedback.
// Guest fields apply only when the caller is anonymous.
type FeedbackCreateRequest struct {
	FeedbackType string  `json:"feedback_type" validate:"required"`
	Message      string  `json:"message" validate:"required,min=3"`
	Rating       *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	GuestName    *string `json:"guest_name" validate:"omitempty,max=128"`
	GuestEmail   *string `json:"guest_email" validate:"omitempty,email"`
}

// FeedbackStatusUpdateRequest toggles the admin read marker.
type FeedbackStatusUpdateRequest struct {
	IsReadByAdmin *bool `json:"is_read_by_admin" validate:"required"`
}

// FeedbackResponse is returned when viewing feedback entries.
type FeedbackResponse struct {
	ID              uint      `json:"id"`
	FeedbackType    string    `json:"feedback_type"`
	Message         string    `json:"message"`
	Rating          *int      `json:"rating"`
	GuestName       *string   `json:"guest_name"`
	GuestEmail      *string   `json:"guest_email"`
	IsReadByAdmin   bool      `json:"is_read_by_admin"`
	SubmittedAt     time.Time `json:"submitted_at"`
	SubmittedByUser *UserLite `json:"submitted_by_user"`
}

// NewFeedbackResponse converts a feedback model into a DTO.
func NewFeedbackResponse(model models.PlatformFeedback) FeedbackResponse {
	response := FeedbackResponse{
		ID:            model.ID,
		FeedbackType:  model.FeedbackType,
		Message:       model.Message,
		Rating:        model.Rating,
		GuestName:     model.GuestName,
		GuestEmail:    model.GuestEmail,
		IsReadByAdmin: model.IsReadByAdmin,
		SubmittedAt:   model.SubmittedAt,
	}
	if model.SubmittedByUser != nil && model.SubmittedByUser.ID != 0 {
		user := NewUserLite(*model.SubmittedByUser)
		response.SubmittedByUser = &user
	}
	return response
}

// NewFeedbackResponseSlice converts feedback models into DTOs.
func NewFeedbackResponseSlice(feedbacks []models.PlatformFeedback) []FeedbackResponse {
	responses := make([]FeedbackResponse, 0, len(feedbacks))
	for _, feedback := range feedbacks {
		responses = append(responses, NewFeedbackResponse(feedback))
	}
	return responses
}
