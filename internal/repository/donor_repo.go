package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

// DonorFilter narrows directory searches.
type DonorFilter struct {
	BloodGroup *models.BloodGroup
	CampusID   *uint
	GroupID    *uint
	City       *string
	District   *string
	Available  *bool
	Page       int
	PageSize   int
}

// DonorRepository defines data operations for the donor directory.
type DonorRepository interface {
	List(ctx context.Context, filter DonorFilter) ([]models.Donor, int64, error)
	GetByID(ctx context.Context, id uint) (models.Donor, error)
	FindByContactNumber(ctx context.Context, contactNumber string) (models.Donor, error)
	FindByUserID(ctx context.Context, userID uint) (models.Donor, error)
	Create(ctx context.Context, donor *models.Donor) error
	Update(ctx context.Context, donor *models.Donor) error
	CreateBatch(ctx context.Context, donors []models.Donor) (int64, error)
}

type donorRepository struct {
	db *gorm.DB
}

// NewDonorRepository instantiates the repository.
func NewDonorRepository(db *gorm.DB) DonorRepository {
	return &donorRepository{db: db}
}

func (r *donorRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Donor{}).
		Preload("Campus").
		Preload("Group")
}

func (r *donorRepository) List(ctx context.Context, filter DonorFilter) ([]models.Donor, int64, error) {
	query := r.baseQuery(ctx)

	if filter.BloodGroup != nil {
		query = query.Where("blood_group = ?", *filter.BloodGroup)
	}
	if filter.CampusID != nil {
		query = query.Where("campus_id = ?", *filter.CampusID)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.City != nil && *filter.City != "" {
		query = query.Where("city LIKE ?", "%"+*filter.City+"%")
	}
	if filter.District != nil && *filter.District != "" {
		query = query.Where("district LIKE ?", "%"+*filter.District+"%")
	}
	if filter.Available != nil {
		query = query.Where("is_available = ?", *filter.Available)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var donors []models.Donor
	if err := query.Order("is_available DESC, updated_at DESC").Find(&donors).Error; err != nil {
		return nil, 0, err
	}

	return donors, total, nil
}

func (r *donorRepository) GetByID(ctx context.Context, id uint) (models.Donor, error) {
	var donor models.Donor
	if err := r.baseQuery(ctx).First(&donor, id).Error; err != nil {
		return models.Donor{}, err
	}
	return donor, nil
}

func (r *donorRepository) FindByContactNumber(ctx context.Context, contactNumber string) (models.Donor, error) {
	var donor models.Donor
	if err := r.db.WithContext(ctx).
		Where("contact_number = ?", contactNumber).
		First(&donor).Error; err != nil {
		return models.Donor{}, err
	}
	return donor, nil
}

func (r *donorRepository) FindByUserID(ctx context.Context, userID uint) (models.Donor, error) {
	var donor models.Donor
	if err := r.baseQuery(ctx).
		Where("user_id = ?", userID).
		First(&donor).Error; err != nil {
		return models.Donor{}, err
	}
	return donor, nil
}

func (r *donorRepository) Create(ctx context.Context, donor *models.Donor) error {
	return r.db.WithContext(ctx).Create(donor).Error
}

func (r *donorRepository) Update(ctx context.Context, donor *models.Donor) error {
	return r.db.WithContext(ctx).Save(donor).Error
}

// CreateBatch inserts donors in one statement, silently skipping rows that
// collide with the contact-number unique index. Returns the number of rows
// actually written.
func (r *donorRepository) CreateBatch(ctx context.Context, donors []models.Donor) (int64, error) {
	if len(donors) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&donors)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
