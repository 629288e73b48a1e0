package models

import "time"

// Feedback type enumeration.
const (
	FeedbackTypeSuggestion = "SUGGESTION"
	FeedbackTypeBugReport  = "BUG_REPORT"
	FeedbackTypeCompliment = "COMPLIMENT"
	FeedbackTypeOther      = "OTHER"
)

// FeedbackTypes lists the accepted feedback categories.
func FeedbackTypes() []string {
	return []string{FeedbackTypeSuggestion, FeedbackTypeBugReport, FeedbackTypeCompliment, FeedbackTypeOther}
}

// ValidFeedbackType reports whether the value is an accepted category.
func ValidFeedbackType(value string) bool {
	for _, candidate := range FeedbackTypes() {
		if value == candidate {
			return true
		}
	}
	return false
}

// PlatformFeedback stores a platform feedback entry, submitted either by a
// signed-in user or a guest.
type PlatformFeedback struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	FeedbackType      string    `gorm:"size:32;not null" json:"feedback_type"`
	Message           string    `gorm:"type:text;not null" json:"message"`
	Rating            *int      `json:"rating"`
	SubmittedByUserID *uint     `gorm:"index" json:"submitted_by_user_id"`
	GuestName         *string   `gorm:"size:128" json:"guest_name"`
	GuestEmail        *string   `gorm:"size:160" json:"guest_email"`
	IsReadByAdmin     bool      `gorm:"index" json:"is_read_by_admin"`
	SubmittedAt       time.Time `gorm:"not null;index" json:"submitted_at"`
	SubmittedByUser   *User     `gorm:"foreignKey:SubmittedByUserID" json:"submitted_by_user"`
}
