package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission lifecycle statuses. Transitions are monotonic per review
// cycle: PENDING_REVIEW moves to APPROVED_IMPORTED or REJECTED, and a
// REJECTED submission returns to PENDING_REVIEW only through an owner
// resubmission, which clears the review metadata.
const (
	// SubmissionStatusPendingReview is the initial status of every cycle.
	SubmissionStatusPendingReview = "PENDING_REVIEW"
	// SubmissionStatusApprovedImported is terminal; donor rows were imported.
	SubmissionStatusApprovedImported = "APPROVED_IMPORTED"
	// SubmissionStatusRejected is terminal for the cycle but revisable by the owner.
	SubmissionStatusRejected = "REJECTED"
	// SubmissionStatusNeedsRevision is declared for parity with the original
	// data model; no transition currently produces it.
	SubmissionStatusNeedsRevision = "NEEDS_REVISION"
)

// SubmissionStatuses lists every declared status value.
func SubmissionStatuses() []string {
	return []string{
		SubmissionStatusPendingReview,
		SubmissionStatusApprovedImported,
		SubmissionStatusRejected,
		SubmissionStatusNeedsRevision,
	}
}

// ValidSubmissionStatus reports whether the value is a declared status.
func ValidSubmissionStatus(status string) bool {
	for _, candidate := range SubmissionStatuses() {
		if status == candidate {
			return true
		}
	}
	return false
}

// DonorListSubmission stages one user-provided batch of candidate donor
// records awaiting admin review. Rows are kept as submitted, untyped, until
// the import engine validates them. Submissions are never deleted; they
// remain as an audit trail of the review decision.
type DonorListSubmission struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	ReferenceID       string         `gorm:"size:64;uniqueIndex" json:"reference_id"`
	ListName          string         `gorm:"size:255;not null" json:"list_name"`
	Notes             *string        `gorm:"type:text" json:"notes"`
	DonorRows         datatypes.JSON `gorm:"type:json;not null" json:"donor_rows"`
	Status            string         `gorm:"size:32;not null;index" json:"status"`
	SubmittedByUserID uint           `gorm:"not null;index" json:"submitted_by_user_id"`
	SubmittedAt       time.Time      `gorm:"not null;index" json:"submitted_at"`
	ReviewedByAdminID *uint          `json:"reviewed_by_admin_id"`
	ReviewedAt        *time.Time     `json:"reviewed_at"`
	AdminNotes        *string        `gorm:"type:text" json:"admin_notes"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	SubmittedByUser   User           `gorm:"foreignKey:SubmittedByUserID" json:"submitted_by_user"`
	ReviewedByAdmin   *User          `gorm:"foreignKey:ReviewedByAdminID" json:"reviewed_by_admin"`
}

// IsPending reports whether the submission still awaits a review decision.
func (s DonorListSubmission) IsPending() bool {
	return s.Status == SubmissionStatusPendingReview
}

// IsRejected reports whether the submission can be revised by its owner.
func (s DonorListSubmission) IsRejected() bool {
	return s.Status == SubmissionStatusRejected
}
