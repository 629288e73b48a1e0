package dto

import (
	"encoding/json"
	"time"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/normalize"
)

// SubmissionCreateRequest is the payload for submitting a donor list for review.
type SubmissionCreateRequest struct {
	ListName  string          `json:"list_name" validate:"required,min=1,max=255"`
	Notes     *string         `json:"notes"`
	DonorRows []normalize.Row `json:"donor_rows" validate:"required,min=1"`
}

// SubmissionResubmitRequest replaces a rejected submission's payload for re-review.
type SubmissionResubmitRequest struct {
	ListName  string          `json:"list_name" validate:"required,min=1,max=255"`
	Notes     *string         `json:"notes"`
	DonorRows []normalize.Row `json:"donor_rows" validate:"required,min=1"`
}

// SubmissionApproveRequest carries the admin's approval decision. EditedRows,
// when present, replaces the stored rows before import.
type SubmissionApproveRequest struct {
	AdminNotes *string         `json:"admin_notes"`
	EditedRows []normalize.Row `json:"edited_rows"`
}

// SubmissionRejectRequest carries the admin's rejection decision.
type SubmissionRejectRequest struct {
	AdminNotes *string `json:"admin_notes"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                uint            `json:"id"`
	ReferenceID       string          `json:"reference_id"`
	ListName          string          `json:"list_name"`
	Notes             *string         `json:"notes"`
	DonorRows         []normalize.Row `json:"donor_rows"`
	RecordCount       int             `json:"record_count"`
	Status            string          `json:"status"`
	SubmittedAt       time.Time       `json:"submitted_at"`
	SubmittedByUser   UserLite        `json:"submitted_by_user"`
	ReviewedAt        *time.Time      `json:"reviewed_at"`
	ReviewedByAdmin   *UserLite       `json:"reviewed_by_admin"`
	ReviewedByAdminID *uint           `json:"reviewed_by_admin_id"`
	AdminNotes        *string         `json:"admin_notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// SubmissionSummaryResponse omits the raw rows for listing views.
type SubmissionSummaryResponse struct {
	ID              uint       `json:"id"`
	ReferenceID     string     `json:"reference_id"`
	ListName        string     `json:"list_name"`
	RecordCount     int        `json:"record_count"`
	Status          string     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	SubmittedByUser UserLite   `json:"submitted_by_user"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	AdminNotes      *string    `json:"admin_notes"`
}

// ImportResultResponse reports the outcome of approve-and-import. A 200
// response can still carry per-row failures; callers must inspect
// ImportErrors for partial-failure details.
type ImportResultResponse struct {
	Message                string             `json:"message"`
	RecordsProcessed       int                `json:"records_processed"`
	RecordsImported        int                `json:"records_imported"`
	RecordsSkippedOrFailed int                `json:"records_skipped_or_failed"`
	ImportErrors           []string           `json:"import_errors"`
	Submission             SubmissionResponse `json:"submission"`
}

// NewSubmissionResponse converts a submission model into a DTO, decoding the
// stored row payload. Rows that fail to decode are surfaced as an empty list
// rather than an error; the import engine performs the authoritative check.
func NewSubmissionResponse(model models.DonorListSubmission) SubmissionResponse {
	rows := decodeRows(model)

	response := SubmissionResponse{
		ID:                model.ID,
		ReferenceID:       model.ReferenceID,
		ListName:          model.ListName,
		Notes:             model.Notes,
		DonorRows:         rows,
		RecordCount:       len(rows),
		Status:            model.Status,
		SubmittedAt:       model.SubmittedAt,
		ReviewedAt:        model.ReviewedAt,
		ReviewedByAdminID: model.ReviewedByAdminID,
		AdminNotes:        model.AdminNotes,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}

	if model.SubmittedByUser.ID != 0 {
		response.SubmittedByUser = NewUserLite(model.SubmittedByUser)
	}
	if model.ReviewedByAdmin != nil && model.ReviewedByAdmin.ID != 0 {
		reviewer := NewUserLite(*model.ReviewedByAdmin)
		response.ReviewedByAdmin = &reviewer
	}

	return response
}

// NewSubmissionSummaryResponse converts a submission model into its listing form.
func NewSubmissionSummaryResponse(model models.DonorListSubmission) SubmissionSummaryResponse {
	response := SubmissionSummaryResponse{
		ID:          model.ID,
		ReferenceID: model.ReferenceID,
		ListName:    model.ListName,
		RecordCount: len(decodeRows(model)),
		Status:      model.Status,
		SubmittedAt: model.SubmittedAt,
		ReviewedAt:  model.ReviewedAt,
		AdminNotes:  model.AdminNotes,
	}
	if model.SubmittedByUser.ID != 0 {
		response.SubmittedByUser = NewUserLite(model.SubmittedByUser)
	}
	return response
}

// NewSubmissionSummarySlice converts submission models into listing DTOs.
func NewSubmissionSummarySlice(submissions []models.DonorListSubmission) []SubmissionSummaryResponse {
	responses := make([]SubmissionSummaryResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionSummaryResponse(submission))
	}
	return responses
}

func decodeRows(model models.DonorListSubmission) []normalize.Row {
	rows := []normalize.Row{}
	if len(model.DonorRows) > 0 {
		_ = json.Unmarshal(model.DonorRows, &rows)
	}
	return rows
}
