package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

var (
	// ErrFeedbackNotFound indicates a feedback entry could not be found.
	ErrFeedbackNotFound = errors.New("feedback not found")
	// ErrInvalidFeedbackType indicates an unknown feedback category.
	ErrInvalidFeedbackType = errors.New("invalid feedback type")
)

// FeedbackService accepts platform feedback from users and guests and exposes
// the admin inbox.
type FeedbackService interface {
	Submit(ctx context.Context, userID *uint, payload dto.FeedbackCreateRequest) (dto.FeedbackResponse, error)
	ListForAdmin(ctx context.Context) ([]dto.FeedbackResponse, error)
	SetReadStatus(ctx context.Context, id uint, payload dto.FeedbackStatusUpdateRequest) (dto.FeedbackResponse, error)
}

type feedbackService struct {
	repo      repository.FeedbackRepository
	validator *validator.Validate
	policy    *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFeedbackService constructs a FeedbackService instance. Messages are
// rendered back to admins as-is, so they are stripped of all markup at intake.
func NewFeedbackService(repo repository.FeedbackRepository, validate *validator.Validate, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		repo:      repo,
		validator: validate,
		policy:    bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "feedback_service").Logger(),
		now:       time.Now,
	}
}

func (s *feedbackService) Submit(ctx context.Context, userID *uint, payload dto.FeedbackCreateRequest) (dto.FeedbackResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeedbackResponse{}, err
	}

	feedbackType := strings.ToUpper(strings.TrimSpace(payload.FeedbackType))
	if !models.ValidFeedbackType(feedbackType) {
		return dto.FeedbackResponse{}, fmt.Errorf("%w: %s", ErrInvalidFeedbackType, payload.FeedbackType)
	}

	feedback := models.PlatformFeedback{
		FeedbackType:      feedbackType,
		Message:           strings.TrimSpace(s.policy.Sanitize(payload.Message)),
		Rating:            payload.Rating,
		SubmittedByUserID: userID,
		SubmittedAt:       s.now(),
	}

	// Guest identity only applies to anonymous submissions.
	if userID == nil {
		feedback.GuestName = sanitizeOptional(s.policy, payload.GuestName)
		feedback.GuestEmail = payload.GuestEmail
	}

	if err := s.repo.Create(ctx, &feedback); err != nil {
		return dto.FeedbackResponse{}, err
	}

	s.logger.Info().
		Uint("feedback_id", feedback.ID).
		Str("feedback_type", feedbackType).
		Bool("guest", userID == nil).
		Msg("feedback submitted")

	return dto.NewFeedbackResponse(feedback), nil
}

func (s *feedbackService) ListForAdmin(ctx context.Context) ([]dto.FeedbackResponse, error) {
	feedbacks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewFeedbackResponseSlice(feedbacks), nil
}

func (s *feedbackService) SetReadStatus(ctx context.Context, id uint, payload dto.FeedbackStatusUpdateRequest) (dto.FeedbackResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeedbackResponse{}, err
	}

	feedback, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackResponse{}, ErrFeedbackNotFound
		}
		return dto.FeedbackResponse{}, err
	}

	feedback.IsReadByAdmin = *payload.IsReadByAdmin
	if err := s.repo.Update(ctx, &feedback); err != nil {
		return dto.FeedbackResponse{}, err
	}

	return dto.NewFeedbackResponse(feedback), nil
}

func sanitizeOptional(policy *bluemonday.Policy, value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := strings.TrimSpace(policy.Sanitize(*value))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
