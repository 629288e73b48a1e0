package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

func uintPtr(v uint) *uint { return &v }

func TestDonorSearchParsesFilters(t *testing.T) {
	donors := newDonorRepoStub()
	donors.donors = []models.Donor{
		{ID: 1, Name: "Rahim", BloodGroup: models.BloodGroupOPositive, ContactNumber: "01711111111", City: "Dhaka", IsAvailable: true},
		{ID: 2, Name: "Karim", BloodGroup: models.BloodGroupABNegative, ContactNumber: "01722222222", City: "Sylhet", IsAvailable: false},
	}

	svc := NewDonorService(donors, newReferenceRepoStub(), newReferenceRepoStub(), nil, time.Minute, testValidator(), testLogger())

	response, err := svc.Search(context.Background(), dto.DonorSearchFilter{BloodGroup: strPtr("O+")})
	require.NoError(t, err)
	require.Len(t, response.Donors, 1)
	require.Equal(t, "Rahim", response.Donors[0].Name)
	require.Equal(t, "O+", response.Donors[0].BloodGroupTag)
	require.Equal(t, int64(1), response.Pagination.TotalItems)

	available := "false"
	response, err = svc.Search(context.Background(), dto.DonorSearchFilter{Availability: &available})
	require.NoError(t, err)
	require.Len(t, response.Donors, 1)
	require.Equal(t, "Karim", response.Donors[0].Name)

	_, err = svc.Search(context.Background(), dto.DonorSearchFilter{BloodGroup: strPtr("Z+")})
	require.ErrorIs(t, err, ErrInvalidSearchFilter)
}

func TestDonorSearchPageSizeDefaultsAndClamps(t *testing.T) {
	donors := newDonorRepoStub()
	svc := NewDonorService(donors, newReferenceRepoStub(), newReferenceRepoStub(), nil, time.Minute, testValidator(), testLogger())

	response, err := svc.Search(context.Background(), dto.DonorSearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 10, donors.lastFilter.PageSize)
	require.Equal(t, 10, response.Pagination.ItemsPerPage)
	require.Equal(t, 1, response.Pagination.CurrentPage)

	_, err = svc.Search(context.Background(), dto.DonorSearchFilter{Limit: 500})
	require.NoError(t, err)
	require.Equal(t, 100, donors.lastFilter.PageSize)
}

func TestDonorFilterOptionsCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	campuses := newReferenceRepoStub()
	campuses.entities[1] = repository.ReferenceEntity{ID: 1, Name: "BUET"}
	groups := newReferenceRepoStub()

	svc := NewDonorService(newDonorRepoStub(), campuses, groups, redisClient, time.Minute, testValidator(), testLogger())

	response, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	require.False(t, response.CacheHit)
	require.Len(t, response.Campuses, 1)
	require.Len(t, response.BloodGroups, 8)

	// Source changes are invisible until the cache is invalidated.
	campuses.entities[2] = repository.ReferenceEntity{ID: 2, Name: "DU"}
	cached, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Len(t, cached.Campuses, 1)

	svc.InvalidateFilterCache(context.Background())
	fresh, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Len(t, fresh.Campuses, 2)
}

func TestSetAvailabilityRequiresLinkedProfile(t *testing.T) {
	donors := newDonorRepoStub()
	donors.donors = []models.Donor{
		{ID: 1, Name: "Rahim", ContactNumber: "01711111111", IsAvailable: true, UserID: uintPtr(7)},
	}

	svc := NewDonorService(donors, newReferenceRepoStub(), newReferenceRepoStub(), nil, time.Minute, testValidator(), testLogger())

	off := false
	response, err := svc.SetAvailability(context.Background(), Actor{ID: 7, Role: models.RoleUser}, dto.AvailabilityUpdateRequest{IsAvailable: &off})
	require.NoError(t, err)
	require.False(t, response.IsAvailable)
	require.False(t, donors.donors[0].IsAvailable)

	_, err = svc.SetAvailability(context.Background(), Actor{ID: 99, Role: models.RoleUser}, dto.AvailabilityUpdateRequest{IsAvailable: &off})
	require.ErrorIs(t, err, ErrDonorProfileNotFound)
}
