package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

// FeedbackRepository defines data operations for platform feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.PlatformFeedback) error
	List(ctx context.Context) ([]models.PlatformFeedback, error)
	GetByID(ctx context.Context, id uint) (models.PlatformFeedback, error)
	Update(ctx context.Context, feedback *models.PlatformFeedback) error
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.PlatformFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) List(ctx context.Context) ([]models.PlatformFeedback, error) {
	var feedbacks []models.PlatformFeedback
	if err := r.db.WithContext(ctx).
		Preload("SubmittedByUser").
		Order("submitted_at DESC").
		Find(&feedbacks).Error; err != nil {
		return nil, err
	}
	return feedbacks, nil
}

func (r *feedbackRepository) GetByID(ctx context.Context, id uint) (models.PlatformFeedback, error) {
	var feedback models.PlatformFeedback
	if err := r.db.WithContext(ctx).
		Preload("SubmittedByUser").
		First(&feedback, id).Error; err != nil {
		return models.PlatformFeedback{}, err
	}
	return feedback, nil
}

func (r *feedbackRepository) Update(ctx context.Context, feedback *models.PlatformFeedback) error {
	return r.db.WithContext(ctx).Save(feedback).Error
}
