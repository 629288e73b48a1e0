package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

// SubmissionRepository defines data operations for donor-list submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.DonorListSubmission) error
	GetByID(ctx context.Context, id uint) (models.DonorListSubmission, error)
	GetByIDForUser(ctx context.Context, id, userID uint) (models.DonorListSubmission, error)
	ListByStatus(ctx context.Context, status string) ([]models.DonorListSubmission, error)
	ListByOwner(ctx context.Context, userID uint) ([]models.DonorListSubmission, error)
	Update(ctx context.Context, submission *models.DonorListSubmission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.DonorListSubmission{}).
		Preload("SubmittedByUser").
		Preload("ReviewedByAdmin")
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.DonorListSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.DonorListSubmission, error) {
	var submission models.DonorListSubmission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.DonorListSubmission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) GetByIDForUser(ctx context.Context, id, userID uint) (models.DonorListSubmission, error) {
	var submission models.DonorListSubmission
	if err := r.baseQuery(ctx).
		Where("id = ? AND submitted_by_user_id = ?", id, userID).
		First(&submission).Error; err != nil {
		return models.DonorListSubmission{}, err
	}
	return submission, nil
}

// ListByStatus returns submissions in the given status, oldest submitted
// first, so pending reviews surface in arrival order.
func (r *submissionRepository) ListByStatus(ctx context.Context, status string) ([]models.DonorListSubmission, error) {
	var submissions []models.DonorListSubmission
	if err := r.baseQuery(ctx).
		Where("status = ?", status).
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListByOwner(ctx context.Context, userID uint) ([]models.DonorListSubmission, error) {
	var submissions []models.DonorListSubmission
	if err := r.baseQuery(ctx).
		Where("submitted_by_user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.DonorListSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
