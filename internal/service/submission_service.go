package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/normalize"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionAccessDenied indicates the actor does not own the submission.
	ErrSubmissionAccessDenied = errors.New("submission access denied")
	// ErrSubmissionNotRevisable indicates the submission is not in a revisable status.
	ErrSubmissionNotRevisable = errors.New("only rejected submissions can be resubmitted")
	// ErrInvalidDonorRows indicates the submitted rows failed the intake check.
	ErrInvalidDonorRows = errors.New("donor rows failed validation")
	// ErrInvalidSubmissionStatus indicates an unknown status filter value.
	ErrInvalidSubmissionStatus = errors.New("invalid submission status")
)

// SubmissionService orchestrates the donor-list submission lifecycle: intake,
// owner views, admin queue views, and resubmission after rejection. Review
// decisions live in ReviewService.
type SubmissionService interface {
	Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	ListForOwner(ctx context.Context, actor Actor) ([]dto.SubmissionSummaryResponse, error)
	ListForAdmin(ctx context.Context, status string) ([]dto.SubmissionSummaryResponse, error)
	Resubmit(ctx context.Context, actor Actor, id uint, payload dto.SubmissionResubmitRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
	referenceID func() string
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(repo repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: repo,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
		referenceID: newSubmissionReference,
	}
}

func newSubmissionReference() string {
	return "SUB-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *submissionService) Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := checkIntakeRows(payload.DonorRows); err != nil {
		return dto.SubmissionResponse{}, err
	}

	rows, err := encodeRows(payload.DonorRows)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission := models.DonorListSubmission{
		ReferenceID:       s.referenceID(),
		ListName:          strings.TrimSpace(payload.ListName),
		Notes:             payload.Notes,
		DonorRows:         rows,
		Status:            models.SubmissionStatusPendingReview,
		SubmittedByUserID: actor.ID,
		SubmittedAt:       s.now(),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", created.ID).
		Str("reference_id", created.ReferenceID).
		Int("rows", len(payload.DonorRows)).
		Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !actor.IsAdmin() && submission.SubmittedByUserID != actor.ID {
		return dto.SubmissionResponse{}, ErrSubmissionAccessDenied
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListForOwner(ctx context.Context, actor Actor) ([]dto.SubmissionSummaryResponse, error) {
	submissions, err := s.submissions.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionSummarySlice(submissions), nil
}

func (s *submissionService) ListForAdmin(ctx context.Context, status string) ([]dto.SubmissionSummaryResponse, error) {
	if status == "" {
		status = models.SubmissionStatusPendingReview
	}
	if !models.ValidSubmissionStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSubmissionStatus, status)
	}

	submissions, err := s.submissions.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionSummarySlice(submissions), nil
}

// Resubmit replaces a rejected submission's payload and returns it to the
// review queue. Review metadata from the rejected cycle is cleared so the
// next reviewer starts fresh.
func (s *submissionService) Resubmit(ctx context.Context, actor Actor, id uint, payload dto.SubmissionResubmitRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := checkIntakeRows(payload.DonorRows); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByIDForUser(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !submission.IsRejected() {
		return dto.SubmissionResponse{}, ErrSubmissionNotRevisable
	}

	rows, err := encodeRows(payload.DonorRows)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission.ListName = strings.TrimSpace(payload.ListName)
	submission.Notes = payload.Notes
	submission.DonorRows = rows
	submission.Status = models.SubmissionStatusPendingReview
	submission.SubmittedAt = s.now()
	submission.ReviewedByAdminID = nil
	submission.ReviewedAt = nil
	submission.AdminNotes = nil
	submission.ReviewedByAdmin = nil

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	updated, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", updated.ID).
		Str("reference_id", updated.ReferenceID).
		Msg("submission resubmitted for review")

	return dto.NewSubmissionResponse(updated), nil
}

// checkIntakeRows performs a shallow sanity check at intake time. Full
// validation happens at import; this only rejects rows so empty they could
// never import, to fail fast for the submitter.
func checkIntakeRows(rows []normalize.Row) error {
	for i, row := range rows {
		if row.Field(normalize.KeyName) == "" &&
			row.Field(normalize.KeyBloodGroup) == "" &&
			row.Field(normalize.KeyContactNumber) == "" {
			return fmt.Errorf("%w: row %d has no name, blood group, or contact number", ErrInvalidDonorRows, i+1)
		}
	}
	return nil
}

func encodeRows(rows []normalize.Row) (datatypes.JSON, error) {
	stripped := make([]normalize.Row, 0, len(rows))
	for _, row := range rows {
		stripped = append(stripped, row.StripClientKeys())
	}
	encoded, err := json.Marshal(stripped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode donor rows: %w", err)
	}
	return encoded, nil
}
