package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

// ReferenceEntity is the storage-neutral view of a campus or group that the
// curation and resolution services operate on.
type ReferenceEntity struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	DonorCount int64     `json:"donor_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReferenceRepository defines the shared find-or-create and curation
// contract for campuses and groups. Name comparison is exact on the trimmed
// value; the unique index on name backs every create path, so a lost
// find-or-create race surfaces as gorm.ErrDuplicatedKey rather than a
// duplicate row.
type ReferenceRepository interface {
	List(ctx context.Context) ([]ReferenceEntity, error)
	GetByID(ctx context.Context, id uint) (ReferenceEntity, error)
	FindByName(ctx context.Context, name string) (ReferenceEntity, error)
	FindByNameExcluding(ctx context.Context, name string, excludeID uint) (ReferenceEntity, error)
	FindOrCreate(ctx context.Context, name string) (ReferenceEntity, error)
	Create(ctx context.Context, name string) (ReferenceEntity, error)
	Rename(ctx context.Context, id uint, name string) (ReferenceEntity, error)
	Delete(ctx context.Context, id uint) error
	DonorCount(ctx context.Context, id uint) (int64, error)
}

type campusRepository struct {
	db *gorm.DB
}

// NewCampusRepository builds the campus-backed reference repository.
func NewCampusRepository(db *gorm.DB) ReferenceRepository {
	return &campusRepository{db: db}
}

func campusEntity(c models.Campus) ReferenceEntity {
	return ReferenceEntity{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func (r *campusRepository) List(ctx context.Context) ([]ReferenceEntity, error) {
	var entities []ReferenceEntity
	err := r.db.WithContext(ctx).Model(&models.Campus{}).
		Select("campus.id, campus.name, campus.created_at, campus.updated_at, COUNT(donors.id) AS donor_count").
		Joins("LEFT JOIN donors ON donors.campus_id = campus.id").
		Group("campus.id").
		Order("campus.name ASC").
		Scan(&entities).Error
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *campusRepository) GetByID(ctx context.Context, id uint) (ReferenceEntity, error) {
	var campus models.Campus
	if err := r.db.WithContext(ctx).First(&campus, id).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return campusEntity(campus), nil
}

func (r *campusRepository) FindByName(ctx context.Context, name string) (ReferenceEntity, error) {
	var campus models.Campus
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&campus).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return campusEntity(campus), nil
}

func (r *campusRepository) FindByNameExcluding(ctx context.Context, name string, excludeID uint) (ReferenceEntity, error) {
	var campus models.Campus
	if err := r.db.WithContext(ctx).
		Where("name = ? AND id <> ?", name, excludeID).
		First(&campus).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return campusEntity(campus), nil
}

func (r *campusRepository) FindOrCreate(ctx context.Context, name string) (ReferenceEntity, error) {
	var campus models.Campus
	if err := r.db.WithContext(ctx).
		Where(models.Campus{Name: name}).
		FirstOrCreate(&campus).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return campusEntity(campus), nil
}

func (r *campusRepository) Create(ctx context.Context, name string) (ReferenceEntity, error) {
	campus := models.Campus{Name: name}
	if err := r.db.WithContext(ctx).Create(&campus).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return campusEntity(campus), nil
}

func (r *campusRepository) Rename(ctx context.Context, id uint, name string) (ReferenceEntity, error) {
	var campus models.Campus
	if err := r.db.WithContext(ctx).First(&campus, id).Error; err != nil {
		return ReferenceEntity{}, err
	}
	campus.Name = name
	if err := r.db.WithContext(ctx).Save(&campus).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return campusEntity(campus), nil
}

func (r *campusRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Campus{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *campusRepository) DonorCount(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Donor{}).
		Where("campus_id = ?", id).
		Count(&count).Error
	return count, err
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository builds the group-backed reference repository.
func NewGroupRepository(db *gorm.DB) ReferenceRepository {
	return &groupRepository{db: db}
}

func groupEntity(g models.Group) ReferenceEntity {
	return ReferenceEntity{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

func (r *groupRepository) List(ctx context.Context) ([]ReferenceEntity, error) {
	var entities []ReferenceEntity
	err := r.db.WithContext(ctx).Model(&models.Group{}).
		Select("groups.id, groups.name, groups.created_at, groups.updated_at, COUNT(donors.id) AS donor_count").
		Joins("LEFT JOIN donors ON donors.group_id = groups.id").
		Group("groups.id").
		Order("groups.name ASC").
		Scan(&entities).Error
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (ReferenceEntity, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return groupEntity(group), nil
}

func (r *groupRepository) FindByName(ctx context.Context, name string) (ReferenceEntity, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&group).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return groupEntity(group), nil
}

func (r *groupRepository) FindByNameExcluding(ctx context.Context, name string, excludeID uint) (ReferenceEntity, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).
		Where("name = ? AND id <> ?", name, excludeID).
		First(&group).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return groupEntity(group), nil
}

func (r *groupRepository) FindOrCreate(ctx context.Context, name string) (ReferenceEntity, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).
		Where(models.Group{Name: name}).
		FirstOrCreate(&group).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return groupEntity(group), nil
}

func (r *groupRepository) Create(ctx context.Context, name string) (ReferenceEntity, error) {
	group := models.Group{Name: name}
	if err := r.db.WithContext(ctx).Create(&group).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return groupEntity(group), nil
}

func (r *groupRepository) Rename(ctx context.Context, id uint, name string) (ReferenceEntity, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return ReferenceEntity{}, err
	}
	group.Name = name
	if err := r.db.WithContext(ctx).Save(&group).Error; err != nil {
		return ReferenceEntity{}, err
	}
	return groupEntity(group), nil
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Group{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupRepository) DonorCount(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Donor{}).
		Where("group_id = ?", id).
		Count(&count).Error
	return count, err
}
