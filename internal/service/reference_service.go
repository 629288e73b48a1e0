package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

var (
	// ErrReferenceNotFound indicates the campus or group does not exist.
	ErrReferenceNotFound = errors.New("record not found")
	// ErrReferenceNameTaken indicates the name is already in use.
	ErrReferenceNameTaken = errors.New("name is already in use")
	// ErrReferenceInUse indicates donors still reference the record.
	ErrReferenceInUse = errors.New("record has donors linked to it and cannot be deleted")
)

// FilterCacheInvalidator busts the cached directory filter options.
type FilterCacheInvalidator interface {
	InvalidateFilterCache(ctx context.Context)
}

// ReferenceService curates one reference directory, campuses or groups. Two
// instances share the implementation; the kind only differs in audit entries
// and logs.
type ReferenceService interface {
	List(ctx context.Context) ([]dto.ReferenceResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.ReferenceCreateRequest) (dto.ReferenceResponse, error)
	Rename(ctx context.Context, actor Actor, id uint, payload dto.ReferenceUpdateRequest) (dto.ReferenceResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type referenceService struct {
	kind      string
	repo      repository.ReferenceRepository
	activity  ActivityRecorder
	cache     FilterCacheInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewReferenceService constructs a curation service for one reference kind.
func NewReferenceService(kind string, repo repository.ReferenceRepository, activity ActivityRecorder, cache FilterCacheInvalidator, validate *validator.Validate, logger zerolog.Logger) ReferenceService {
	return &referenceService{
		kind:      kind,
		repo:      repo,
		activity:  activity,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", kind+"_service").Logger(),
	}
}

func (s *referenceService) List(ctx context.Context) ([]dto.ReferenceResponse, error) {
	entities, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewReferenceResponseSlice(entities), nil
}

func (s *referenceService) Create(ctx context.Context, actor Actor, payload dto.ReferenceCreateRequest) (dto.ReferenceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReferenceResponse{}, err
	}

	name := strings.TrimSpace(payload.Name)
	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return dto.ReferenceResponse{}, ErrReferenceNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ReferenceResponse{}, err
	}

	entity, err := s.repo.Create(ctx, name)
	if err != nil {
		// Lost race against a concurrent create; the unique index decides.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ReferenceResponse{}, ErrReferenceNameTaken
		}
		return dto.ReferenceResponse{}, err
	}

	s.cache.InvalidateFilterCache(ctx)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     s.kind + "_created",
		EntityType: s.kind,
		EntityID:   &entity.ID,
		Metadata:   map[string]interface{}{"name": entity.Name},
	})
	s.logger.Info().Uint("id", entity.ID).Str("name", entity.Name).Msg(s.kind + " created")

	return dto.NewReferenceResponse(entity), nil
}

func (s *referenceService) Rename(ctx context.Context, actor Actor, id uint, payload dto.ReferenceUpdateRequest) (dto.ReferenceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReferenceResponse{}, err
	}

	name := strings.TrimSpace(payload.Name)
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReferenceResponse{}, ErrReferenceNotFound
		}
		return dto.ReferenceResponse{}, err
	}

	if _, err := s.repo.FindByNameExcluding(ctx, name, id); err == nil {
		return dto.ReferenceResponse{}, ErrReferenceNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ReferenceResponse{}, err
	}

	entity, err := s.repo.Rename(ctx, id, name)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ReferenceResponse{}, ErrReferenceNameTaken
		}
		return dto.ReferenceResponse{}, err
	}

	s.cache.InvalidateFilterCache(ctx)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     s.kind + "_renamed",
		EntityType: s.kind,
		EntityID:   &entity.ID,
		Metadata:   map[string]interface{}{"name": entity.Name},
	})

	return dto.NewReferenceResponse(entity), nil
}

// Delete refuses to remove a record while donors still reference it, so the
// directory never dangles.
func (s *referenceService) Delete(ctx context.Context, actor Actor, id uint) error {
	count, err := s.repo.DonorCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrReferenceInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReferenceNotFound
		}
		return err
	}

	s.cache.InvalidateFilterCache(ctx)
	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     s.kind + "_deleted",
		EntityType: s.kind,
		EntityID:   &id,
	})
	s.logger.Info().Uint("id", id).Msg(s.kind + " deleted")

	return nil
}
