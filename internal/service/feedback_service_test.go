package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

type feedbackRepoStub struct {
	nextID    uint
	feedbacks []models.PlatformFeedback
}

func newFeedbackRepoStub() *feedbackRepoStub {
	return &feedbackRepoStub{nextID: 1}
}

func (r *feedbackRepoStub) Create(ctx context.Context, feedback *models.PlatformFeedback) error {
	feedback.ID = r.nextID
	r.nextID++
	r.feedbacks = append(r.feedbacks, *feedback)
	return nil
}

func (r *feedbackRepoStub) List(ctx context.Context) ([]models.PlatformFeedback, error) {
	return r.feedbacks, nil
}

func (r *feedbackRepoStub) GetByID(ctx context.Context, id uint) (models.PlatformFeedback, error) {
	for _, feedback := range r.feedbacks {
		if feedback.ID == id {
			return feedback, nil
		}
	}
	return models.PlatformFeedback{}, gorm.ErrRecordNotFound
}

func (r *feedbackRepoStub) Update(ctx context.Context, feedback *models.PlatformFeedback) error {
	for i, existing := range r.feedbacks {
		if existing.ID == feedback.ID {
			r.feedbacks[i] = *feedback
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func TestFeedbackSubmitSanitizesMessage(t *testing.T) {
	repo := newFeedbackRepoStub()
	svc := NewFeedbackService(repo, testValidator(), testLogger())

	response, err := svc.Submit(context.Background(), nil, dto.FeedbackCreateRequest{
		FeedbackType: "suggestion",
		Message:      "<script>alert('x')</script>Add a dark theme",
		GuestName:    strPtr("Anon"),
	})
	require.NoError(t, err)

	require.Equal(t, models.FeedbackTypeSuggestion, response.FeedbackType)
	require.Equal(t, "Add a dark theme", response.Message)
	require.NotNil(t, response.GuestName)
	require.False(t, response.IsReadByAdmin)
}

func TestFeedbackSubmitIgnoresGuestFieldsForUsers(t *testing.T) {
	repo := newFeedbackRepoStub()
	svc := NewFeedbackService(repo, testValidator(), testLogger())

	userID := uint(7)
	response, err := svc.Submit(context.Background(), &userID, dto.FeedbackCreateRequest{
		FeedbackType: models.FeedbackTypeBugReport,
		Message:      "Search pagination is off by one",
		GuestName:    strPtr("should be dropped"),
	})
	require.NoError(t, err)
	require.Nil(t, response.GuestName)
	require.Equal(t, &userID, repo.feedbacks[0].SubmittedByUserID)
}

func TestFeedbackSubmitRejectsUnknownType(t *testing.T) {
	svc := NewFeedbackService(newFeedbackRepoStub(), testValidator(), testLogger())

	_, err := svc.Submit(context.Background(), nil, dto.FeedbackCreateRequest{
		FeedbackType: "RANT",
		Message:      "unacceptable",
	})
	require.ErrorIs(t, err, ErrInvalidFeedbackType)
}

func TestFeedbackSetReadStatus(t *testing.T) {
	repo := newFeedbackRepoStub()
	svc := NewFeedbackService(repo, testValidator(), testLogger())

	_, err := svc.Submit(context.Background(), nil, dto.FeedbackCreateRequest{
		FeedbackType: models.FeedbackTypeOther,
		Message:      "thanks for the service",
	})
	require.NoError(t, err)

	read := true
	response, err := svc.SetReadStatus(context.Background(), 1, dto.FeedbackStatusUpdateRequest{IsReadByAdmin: &read})
	require.NoError(t, err)
	require.True(t, response.IsReadByAdmin)

	_, err = svc.SetReadStatus(context.Background(), 99, dto.FeedbackStatusUpdateRequest{IsReadByAdmin: &read})
	require.ErrorIs(t, err, ErrFeedbackNotFound)
}
