package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/normalize"
	"github.com/bloodlagbe/bloodlagbe-api/internal/observability"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

var (
	// ErrDonorNotFound indicates a donor could not be found.
	ErrDonorNotFound = errors.New("donor not found")
	// ErrDonorProfileNotFound indicates the user has no linked donor profile.
	ErrDonorProfileNotFound = errors.New("no donor profile linked to this account")
	// ErrInvalidSearchFilter indicates a search filter value failed to parse.
	ErrInvalidSearchFilter = errors.New("invalid search filter")
)

// filterOptionsCacheKey caches the directory filter widget payload. Bumping
// the version suffix invalidates every deployed cache at once.
const filterOptionsCacheKey = "filters:options:v1"

const defaultPageSize = 10
const maxPageSize = 100

// DonorService exposes the public donor directory and the donor's own
// availability toggle.
type DonorService interface {
	Search(ctx context.Context, filter dto.DonorSearchFilter) (dto.DonorListResponse, error)
	Get(ctx context.Context, id uint) (dto.DonorResponse, error)
	FilterOptions(ctx context.Context) (dto.FilterOptionsResponse, error)
	SetAvailability(ctx context.Context, actor Actor, payload dto.AvailabilityUpdateRequest) (dto.DonorResponse, error)
	InvalidateFilterCache(ctx context.Context)
}

type donorService struct {
	donors    repository.DonorRepository
	campuses  repository.ReferenceRepository
	groups    repository.ReferenceRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewDonorService constructs a DonorService instance.
func NewDonorService(donors repository.DonorRepository, campuses, groups repository.ReferenceRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) DonorService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &donorService{
		donors:    donors,
		campuses:  campuses,
		groups:    groups,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "donor_service").Logger(),
	}
}

func (s *donorService) Search(ctx context.Context, filter dto.DonorSearchFilter) (dto.DonorListResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.DonorListResponse{}, err
	}

	repoFilter := repository.DonorFilter{
		CampusID: filter.CampusID,
		GroupID:  filter.GroupID,
		City:     filter.City,
		District: filter.District,
		Page:     maxInt(filter.Page, 1),
		PageSize: clampPageSize(filter.Limit),
	}

	if filter.BloodGroup != nil && *filter.BloodGroup != "" {
		bloodGroup, ok := normalize.ParseBloodGroup(*filter.BloodGroup)
		if !ok {
			return dto.DonorListResponse{}, fmt.Errorf("%w: blood group %q", ErrInvalidSearchFilter, *filter.BloodGroup)
		}
		repoFilter.BloodGroup = &bloodGroup
	}
	if filter.Availability != nil && *filter.Availability != "" {
		available := *filter.Availability == "true"
		repoFilter.Available = &available
	}

	donors, total, err := s.donors.List(ctx, repoFilter)
	if err != nil {
		return dto.DonorListResponse{}, err
	}

	pagination := dto.PaginationMeta{
		TotalItems:   total,
		CurrentPage:  repoFilter.Page,
		ItemsPerPage: repoFilter.PageSize,
		TotalPages:   int(math.Ceil(float64(total) / float64(repoFilter.PageSize))),
	}

	return dto.DonorListResponse{
		Donors:     dto.NewDonorResponseSlice(donors),
		Pagination: pagination,
	}, nil
}

func (s *donorService) Get(ctx context.Context, id uint) (dto.DonorResponse, error) {
	donor, err := s.donors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DonorResponse{}, ErrDonorNotFound
		}
		return dto.DonorResponse{}, err
	}
	return dto.NewDonorResponse(donor), nil
}

func (s *donorService) FilterOptions(ctx context.Context) (dto.FilterOptionsResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, filterOptionsCacheKey).Result(); err == nil && cached != "" {
			var response dto.FilterOptionsResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				observability.CacheLookups().WithLabelValues("hit").Inc()
				return response, nil
			}
		}
	}

	campuses, err := s.campuses.List(ctx)
	if err != nil {
		observability.CacheLookups().WithLabelValues("error").Inc()
		return dto.FilterOptionsResponse{}, err
	}
	groups, err := s.groups.List(ctx)
	if err != nil {
		observability.CacheLookups().WithLabelValues("error").Inc()
		return dto.FilterOptionsResponse{}, err
	}

	response := dto.FilterOptionsResponse{
		Campuses:    referenceOptions(campuses),
		Groups:      referenceOptions(groups),
		BloodGroups: bloodGroupOptions(),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, filterOptionsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache filter options")
			}
		}
	}

	observability.CacheLookups().WithLabelValues("miss").Inc()

	return response, nil
}

func (s *donorService) SetAvailability(ctx context.Context, actor Actor, payload dto.AvailabilityUpdateRequest) (dto.DonorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DonorResponse{}, err
	}

	donor, err := s.donors.FindByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DonorResponse{}, ErrDonorProfileNotFound
		}
		return dto.DonorResponse{}, err
	}

	donor.IsAvailable = *payload.IsAvailable
	if err := s.donors.Update(ctx, &donor); err != nil {
		return dto.DonorResponse{}, err
	}

	s.logger.Info().
		Uint("donor_id", donor.ID).
		Bool("is_available", donor.IsAvailable).
		Msg("donor availability updated")

	return dto.NewDonorResponse(donor), nil
}

// InvalidateFilterCache drops the cached filter options. Called after campus
// or group curation so the widget reflects renames without waiting for TTL.
func (s *donorService) InvalidateFilterCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, filterOptionsCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate filter options cache")
	}
}

func referenceOptions(entities []repository.ReferenceEntity) []dto.FilterOption {
	options := make([]dto.FilterOption, 0, len(entities))
	for _, entity := range entities {
		options = append(options, dto.FilterOption{
			ID:   strconv.FormatUint(uint64(entity.ID), 10),
			Name: entity.Name,
		})
	}
	return options
}

func bloodGroupOptions() []dto.FilterOption {
	groups := models.BloodGroups()
	options := make([]dto.FilterOption, 0, len(groups))
	for _, group := range groups {
		options = append(options, dto.FilterOption{
			ID:   string(group),
			Name: group.Display(),
		})
	}
	return options
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampPageSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}
