package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/normalize"
	"github.com/bloodlagbe/bloodlagbe-api/internal/observability"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

var (
	// ErrUploadFileRequired indicates no file arrived with the request.
	ErrUploadFileRequired = errors.New("donor file is required")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the file is not a CSV.
	ErrUploadTypeNotAllowed = errors.New("file must be a CSV")
	// ErrUploadInvalidHeader indicates required CSV columns are missing.
	ErrUploadInvalidHeader = errors.New("CSV header is missing required columns")
	// ErrUploadEmpty indicates the CSV has a header but no data rows.
	ErrUploadEmpty = errors.New("CSV contains no data rows")
)

// csvColumns maps accepted header spellings onto canonical row keys. Headers
// are matched after lowercasing and stripping underscores, so both
// "bloodGroup" and "blood_group" resolve.
var csvColumns = map[string]string{
	"name":          normalize.KeyName,
	"bloodgroup":    normalize.KeyBloodGroup,
	"contactnumber": normalize.KeyContactNumber,
	"email":         normalize.KeyEmail,
	"district":      normalize.KeyDistrict,
	"city":          normalize.KeyCity,
	"campus":        normalize.KeyCampus,
	"group":         normalize.KeyGroup,
	"isavailable":   normalize.KeyIsAvailable,
	"tagline":       normalize.KeyTagline,
}

// requiredColumns must all be present in the header. The direct upload path
// is admin-only and requires complete rows, affiliation included.
var requiredColumns = []string{
	normalize.KeyName,
	normalize.KeyBloodGroup,
	normalize.KeyContactNumber,
	normalize.KeyDistrict,
	normalize.KeyCity,
	normalize.KeyCampus,
	normalize.KeyGroup,
}

// UploadService ingests admin-supplied CSV files straight into the donor
// directory, bypassing the review queue.
type UploadService interface {
	Upload(ctx context.Context, actor Actor, file *multipart.FileHeader) (dto.UploadResultResponse, error)
}

type uploadService struct {
	donors   repository.DonorRepository
	campuses repository.ReferenceRepository
	groups   repository.ReferenceRepository
	activity ActivityRecorder
	logger   zerolog.Logger
	maxSize  int64
	tracer   trace.Tracer
}

// NewUploadService constructs the CSV upload service.
func NewUploadService(donors repository.DonorRepository, campuses, groups repository.ReferenceRepository, activity ActivityRecorder, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &uploadService{
		donors:   donors,
		campuses: campuses,
		groups:   groups,
		activity: activity,
		logger:   logger.With().Str("component", "upload_service").Logger(),
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		tracer:   otel.Tracer("github.com/bloodlagbe/bloodlagbe-api/internal/service/upload"),
	}
}

func (s *uploadService) Upload(ctx context.Context, actor Actor, file *multipart.FileHeader) (dto.UploadResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.ingest")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.ImportLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		span.RecordError(ErrUploadFileRequired)
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResultResponse{}, ErrUploadFileRequired
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadResultResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.UploadResultResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		return dto.UploadResultResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadResultResponse{}, ErrUploadTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	if !mime.Is("text/csv") && !mime.Is("text/plain") {
		span.SetAttributes(attribute.String("upload.detected_mime", mime.String()))
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.UploadResultResponse{}, fmt.Errorf("%w, got %s", ErrUploadTypeNotAllowed, mime.String())
	}

	rows, rowErrors, err := parseCSV(buf.Bytes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return dto.UploadResultResponse{}, err
	}

	donors, rowErrors := s.buildDonors(ctx, rows, rowErrors)

	created, err := s.donors.CreateBatch(ctx, donors)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return dto.UploadResultResponse{}, err
	}

	observability.ImportRows().WithLabelValues("imported").Add(float64(created))
	if skipped := int64(len(donors)) - created; skipped > 0 {
		observability.ImportRows().WithLabelValues("skipped_duplicate").Add(float64(skipped))
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "donor_csv_uploaded",
		EntityType: "donor",
		Metadata: map[string]interface{}{
			"file_name":     file.Filename,
			"success_count": created,
			"error_count":   len(rowErrors),
		},
	})

	s.logger.Info().
		Str("file_name", file.Filename).
		Int64("created", created).
		Int("row_errors", len(rowErrors)).
		Msg("donor CSV processed")

	span.SetAttributes(
		attribute.Int64("upload.created", created),
		attribute.Int("upload.row_errors", len(rowErrors)),
	)
	span.SetStatus(codes.Ok, "ingested")

	return dto.UploadResultResponse{
		Message:      fmt.Sprintf("Processed file. %d donors added, %d rows had errors.", created, len(rowErrors)),
		SuccessCount: created,
		ErrorCount:   len(rowErrors),
		Errors:       rowErrors,
	}, nil
}

// parseCSV validates the header and converts each data line into a canonical
// row. Returned row errors carry file line numbers, header included, so the
// first data row reports as row 2.
func parseCSV(payload []byte) ([]normalize.Row, []dto.UploadRowError, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	keys := make([]string, len(header))
	seen := map[string]bool{}
	for i, column := range header {
		folded := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(column)), "_", "")
		if key, ok := csvColumns[folded]; ok {
			keys[i] = key
			seen[key] = true
		}
	}
	missing := []string{}
	for _, required := range requiredColumns {
		if !seen[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrUploadInvalidHeader, strings.Join(missing, ", "))
	}

	var rows []normalize.Row
	var rowErrors []dto.UploadRowError
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, dto.UploadRowError{Row: line, Message: fmt.Sprintf("malformed CSV row: %v", err)})
			continue
		}

		row := normalize.Row{}
		for i, value := range record {
			if i < len(keys) && keys[i] != "" {
				row[keys[i]] = value
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 && len(rowErrors) == 0 {
		return nil, nil, ErrUploadEmpty
	}

	return rows, rowErrors, nil
}

// buildDonors validates rows and resolves affiliations. Campus and group
// lookups are memoized per file.
func (s *uploadService) buildDonors(ctx context.Context, rows []normalize.Row, rowErrors []dto.UploadRowError) ([]models.Donor, []dto.UploadRowError) {
	campusCache := map[string]uint{}
	groupCache := map[string]uint{}
	donors := make([]models.Donor, 0, len(rows))

	for i, row := range rows {
		line := i + 2

		validated, reason := row.Validate(true)
		switch reason {
		case normalize.RejectMissingFields:
			observability.ImportRows().WithLabelValues("rejected").Inc()
			rowErrors = append(rowErrors, dto.UploadRowError{Row: line, Message: "missing required fields"})
			continue
		case normalize.RejectInvalidBloodGroup:
			observability.ImportRows().WithLabelValues("rejected").Inc()
			rowErrors = append(rowErrors, dto.UploadRowError{Row: line, Message: fmt.Sprintf("invalid blood group '%s'", row.Field(normalize.KeyBloodGroup))})
			continue
		}

		campusID, err := resolveReference(ctx, campusCache, validated.CampusName, func(ctx context.Context, name string) (uint, error) {
			campus, err := s.campuses.FindOrCreate(ctx, name)
			return campus.ID, err
		})
		if err != nil {
			observability.ImportRows().WithLabelValues("failed").Inc()
			rowErrors = append(rowErrors, dto.UploadRowError{Row: line, Message: fmt.Sprintf("failed to resolve campus: %v", err)})
			continue
		}
		groupID, err := resolveReference(ctx, groupCache, validated.GroupName, func(ctx context.Context, name string) (uint, error) {
			group, err := s.groups.FindOrCreate(ctx, name)
			return group.ID, err
		})
		if err != nil {
			observability.ImportRows().WithLabelValues("failed").Inc()
			rowErrors = append(rowErrors, dto.UploadRowError{Row: line, Message: fmt.Sprintf("failed to resolve group: %v", err)})
			continue
		}

		donors = append(donors, models.Donor{
			Name:          validated.Name,
			BloodGroup:    validated.BloodGroup,
			ContactNumber: validated.ContactNumber,
			Email:         optionalString(validated.Email),
			District:      validated.District,
			City:          validated.City,
			IsAvailable:   validated.IsAvailable,
			Tagline:       optionalString(validated.Tagline),
			CampusID:      &campusID,
			GroupID:       &groupID,
		})
	}

	return donors, rowErrors
}
