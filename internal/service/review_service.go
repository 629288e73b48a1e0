package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/normalize"
	"github.com/bloodlagbe/bloodlagbe-api/internal/observability"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

var (
	// ErrSubmissionNotPending indicates a review decision targeted a
	// submission that already left the review queue.
	ErrSubmissionNotPending = errors.New("submission is not pending review")
	// ErrInvalidDonorData indicates the submission's stored row payload is
	// not a decodable list of donor rows.
	ErrInvalidDonorData = errors.New("submission donor data is malformed")
)

// ReviewService applies admin review decisions. Approval runs the import
// engine inside a single transaction: the donors created and the submission's
// finalization commit together or roll back together.
type ReviewService interface {
	Approve(ctx context.Context, actor Actor, submissionID uint, payload dto.SubmissionApproveRequest) (dto.ImportResultResponse, error)
	Reject(ctx context.Context, actor Actor, submissionID uint, payload dto.SubmissionRejectRequest) (dto.SubmissionResponse, error)
}

type reviewService struct {
	reviews     repository.ReviewRepository
	submissions repository.SubmissionRepository
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewReviewService constructs a ReviewService instance.
func NewReviewService(reviews repository.ReviewRepository, submissions repository.SubmissionRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) ReviewService {
	return &reviewService{
		reviews:     reviews,
		submissions: submissions,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "review_service").Logger(),
		tracer:      otel.Tracer("github.com/bloodlagbe/bloodlagbe-api/internal/service/review"),
		now:         time.Now,
	}
}

// importTally accumulates the outcome of one approval run.
type importTally struct {
	processed int
	imported  int
	errors    []string
}

func (t importTally) skippedOrFailed() int {
	return t.processed - t.imported
}

func (s *reviewService) Approve(ctx context.Context, actor Actor, submissionID uint, payload dto.SubmissionApproveRequest) (dto.ImportResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.approve")
	defer span.End()
	span.SetAttributes(
		attribute.Int("submission.id", int(submissionID)),
		attribute.Int("actor.id", int(actor.ID)),
		attribute.Bool("review.edited_rows", len(payload.EditedRows) > 0),
	)

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		return dto.ImportResultResponse{}, err
	}

	start := s.now()
	var tally importTally

	err := s.reviews.Transact(ctx, func(store repository.ReviewStore) error {
		submission, err := store.GetSubmission(ctx, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}
		if !submission.IsPending() {
			return ErrSubmissionNotPending
		}

		rows, replaced, err := resolveRows(submission, payload.EditedRows)
		if err != nil {
			return err
		}

		tally = s.importRows(ctx, store, rows)

		if replaced {
			encoded, err := json.Marshal(rows)
			if err != nil {
				return fmt.Errorf("failed to encode edited rows: %w", err)
			}
			submission.DonorRows = encoded
		}

		reviewedAt := s.now()
		submission.Status = models.SubmissionStatusApprovedImported
		submission.ReviewedAt = &reviewedAt
		submission.ReviewedByAdminID = &actor.ID
		if payload.AdminNotes != nil {
			submission.AdminNotes = payload.AdminNotes
		}

		return store.UpdateSubmission(ctx, &submission)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "approval failed")
		return dto.ImportResultResponse{}, err
	}

	observability.ImportLatency().Observe(time.Since(start).Seconds())
	observability.ReviewDecisions().WithLabelValues("approved").Inc()

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "submission_approved",
		EntityType: "donor_list_submission",
		EntityID:   &submissionID,
		Metadata: map[string]interface{}{
			"records_processed": tally.processed,
			"records_imported":  tally.imported,
			"records_skipped":   tally.skippedOrFailed(),
		},
	})

	s.logger.Info().
		Uint("submission_id", submissionID).
		Int("processed", tally.processed).
		Int("imported", tally.imported).
		Int("skipped_or_failed", tally.skippedOrFailed()).
		Msg("submission approved and imported")

	span.SetAttributes(
		attribute.Int("import.processed", tally.processed),
		attribute.Int("import.imported", tally.imported),
	)
	span.SetStatus(codes.Ok, "imported")

	finalized, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return dto.ImportResultResponse{}, err
	}

	return dto.ImportResultResponse{
		Message:                fmt.Sprintf("Submission approved. Imported %d of %d records.", tally.imported, tally.processed),
		RecordsProcessed:       tally.processed,
		RecordsImported:        tally.imported,
		RecordsSkippedOrFailed: tally.skippedOrFailed(),
		ImportErrors:           tally.errors,
		Submission:             dto.NewSubmissionResponse(finalized),
	}, nil
}

// importRows runs the per-row import loop. Row failures never abort the
// batch; each one lands in the diagnostics list and the loop moves on.
// Campus and group lookups are memoized per batch so a list naming the same
// campus fifty times resolves it once.
func (s *reviewService) importRows(ctx context.Context, store repository.ReviewStore, rows []normalize.Row) importTally {
	tally := importTally{processed: len(rows), errors: []string{}}
	campusCache := map[string]uint{}
	groupCache := map[string]uint{}

	for i, row := range rows {
		record := i + 1

		validated, reason := row.Validate(false)
		switch reason {
		case normalize.RejectMissingFields:
			observability.ImportRows().WithLabelValues("rejected").Inc()
			tally.errors = append(tally.errors,
				fmt.Sprintf("Record %d: missing required fields (name, blood group, contact number, district, city).", record))
			continue
		case normalize.RejectInvalidBloodGroup:
			observability.ImportRows().WithLabelValues("rejected").Inc()
			tally.errors = append(tally.errors,
				fmt.Sprintf("Record %d ('%s'): invalid blood group '%s'.", record, row.Field(normalize.KeyName), row.Field(normalize.KeyBloodGroup)))
			continue
		}

		donor := models.Donor{
			Name:          validated.Name,
			BloodGroup:    validated.BloodGroup,
			ContactNumber: validated.ContactNumber,
			Email:         optionalString(validated.Email),
			District:      validated.District,
			City:          validated.City,
			IsAvailable:   validated.IsAvailable,
			Tagline:       optionalString(validated.Tagline),
		}

		if validated.CampusName != "" {
			campusID, err := resolveReference(ctx, campusCache, validated.CampusName, func(ctx context.Context, name string) (uint, error) {
				campus, err := store.FindOrCreateCampus(ctx, name)
				return campus.ID, err
			})
			if err != nil {
				observability.ImportRows().WithLabelValues("failed").Inc()
				tally.errors = append(tally.errors,
					fmt.Sprintf("Record %d ('%s'): import failed: %v.", record, validated.Name, err))
				continue
			}
			donor.CampusID = &campusID
		}
		if validated.GroupName != "" {
			groupID, err := resolveReference(ctx, groupCache, validated.GroupName, func(ctx context.Context, name string) (uint, error) {
				group, err := store.FindOrCreateGroup(ctx, name)
				return group.ID, err
			})
			if err != nil {
				observability.ImportRows().WithLabelValues("failed").Inc()
				tally.errors = append(tally.errors,
					fmt.Sprintf("Record %d ('%s'): import failed: %v.", record, validated.Name, err))
				continue
			}
			donor.GroupID = &groupID
		}

		// The duplicate check runs after affiliation resolution: a skipped
		// row still leaves behind any campus or group it introduced.
		existing, err := store.FindDonorByContact(ctx, validated.ContactNumber)
		if err == nil {
			observability.ImportRows().WithLabelValues("skipped_duplicate").Inc()
			tally.errors = append(tally.errors,
				fmt.Sprintf("Record %d ('%s'): skipped, donor with contact number %s already exists (ID: %d).", record, validated.Name, validated.ContactNumber, existing.ID))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			observability.ImportRows().WithLabelValues("failed").Inc()
			tally.errors = append(tally.errors,
				fmt.Sprintf("Record %d ('%s'): import failed: %v.", record, validated.Name, err))
			continue
		}

		if err := store.CreateDonor(ctx, &donor); err != nil {
			observability.ImportRows().WithLabelValues("failed").Inc()
			tally.errors = append(tally.errors,
				fmt.Sprintf("Record %d ('%s'): import failed: %v.", record, validated.Name, err))
			continue
		}

		observability.ImportRows().WithLabelValues("imported").Inc()
		tally.imported++
	}

	return tally
}

func (s *reviewService) Reject(ctx context.Context, actor Actor, submissionID uint, payload dto.SubmissionRejectRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.reject")
	defer span.End()
	span.SetAttributes(
		attribute.Int("submission.id", int(submissionID)),
		attribute.Int("actor.id", int(actor.ID)),
	)

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if !submission.IsPending() {
		return dto.SubmissionResponse{}, ErrSubmissionNotPending
	}

	reviewedAt := s.now()
	submission.Status = models.SubmissionStatusRejected
	submission.ReviewedAt = &reviewedAt
	submission.ReviewedByAdminID = &actor.ID
	if payload.AdminNotes != nil {
		submission.AdminNotes = payload.AdminNotes
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rejection failed")
		return dto.SubmissionResponse{}, err
	}

	observability.ReviewDecisions().WithLabelValues("rejected").Inc()

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "submission_rejected",
		EntityType: "donor_list_submission",
		EntityID:   &submissionID,
	})

	s.logger.Info().Uint("submission_id", submissionID).Msg("submission rejected")
	span.SetStatus(codes.Ok, "rejected")

	updated, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(updated), nil
}

// resolveRows picks the row set an approval operates on: the admin's edited
// rows when supplied, otherwise the rows stored at submission time. Edited
// rows are stripped of client-side bookkeeping keys before use.
func resolveRows(submission models.DonorListSubmission, edited []normalize.Row) ([]normalize.Row, bool, error) {
	if len(edited) > 0 {
		cleaned := make([]normalize.Row, 0, len(edited))
		for _, row := range edited {
			cleaned = append(cleaned, row.StripClientKeys())
		}
		return cleaned, true, nil
	}

	var rows []normalize.Row
	if err := json.Unmarshal(submission.DonorRows, &rows); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidDonorData, err)
	}
	return rows, false, nil
}

// resolveReference memoizes lookups by lowercased trimmed name so casing
// variants of the same name resolve to one record within a batch.
func resolveReference(ctx context.Context, cache map[string]uint, name string, lookup func(ctx context.Context, name string) (uint, error)) (uint, error) {
	trimmed := strings.TrimSpace(name)
	key := strings.ToLower(trimmed)
	if id, ok := cache[key]; ok {
		return id, nil
	}
	id, err := lookup(ctx, trimmed)
	if err != nil {
		return 0, err
	}
	cache[key] = id
	return id, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
