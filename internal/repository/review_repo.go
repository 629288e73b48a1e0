package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

// ReviewStore is the storage surface the import engine runs against. Every
// call made through one Transact invocation shares a single transaction, so
// the submission finalization commits together with the donors it imported,
// or not at all.
type ReviewStore interface {
	GetSubmission(ctx context.Context, id uint) (models.DonorListSubmission, error)
	UpdateSubmission(ctx context.Context, submission *models.DonorListSubmission) error
	FindDonorByContact(ctx context.Context, contactNumber string) (models.Donor, error)
	CreateDonor(ctx context.Context, donor *models.Donor) error
	FindOrCreateCampus(ctx context.Context, name string) (models.Campus, error)
	FindOrCreateGroup(ctx context.Context, name string) (models.Group, error)
}

// ReviewRepository opens the transaction boundary for a review decision.
type ReviewRepository interface {
	Transact(ctx context.Context, fn func(store ReviewStore) error) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository builds the transaction-scoped review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Transact(ctx context.Context, fn func(store ReviewStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&reviewStore{db: tx})
	})
}

type reviewStore struct {
	db *gorm.DB
}

func (s *reviewStore) GetSubmission(ctx context.Context, id uint) (models.DonorListSubmission, error) {
	var submission models.DonorListSubmission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.DonorListSubmission{}, err
	}
	return submission, nil
}

func (s *reviewStore) UpdateSubmission(ctx context.Context, submission *models.DonorListSubmission) error {
	return s.db.WithContext(ctx).Save(submission).Error
}

func (s *reviewStore) FindDonorByContact(ctx context.Context, contactNumber string) (models.Donor, error) {
	var donor models.Donor
	if err := s.db.WithContext(ctx).
		Where("contact_number = ?", contactNumber).
		First(&donor).Error; err != nil {
		return models.Donor{}, err
	}
	return donor, nil
}

func (s *reviewStore) CreateDonor(ctx context.Context, donor *models.Donor) error {
	return s.db.WithContext(ctx).Create(donor).Error
}

func (s *reviewStore) FindOrCreateCampus(ctx context.Context, name string) (models.Campus, error) {
	var campus models.Campus
	if err := s.db.WithContext(ctx).
		Where(models.Campus{Name: name}).
		FirstOrCreate(&campus).Error; err != nil {
		return models.Campus{}, err
	}
	return campus, nil
}

func (s *reviewStore) FindOrCreateGroup(ctx context.Context, name string) (models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).
		Where(models.Group{Name: name}).
		FirstOrCreate(&group).Error; err != nil {
		return models.Group{}, err
	}
	return group, nil
}
