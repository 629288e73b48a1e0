package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/handler"
	"github.com/bloodlagbe/bloodlagbe-api/internal/service"
)

type mockDonorService struct {
	lastFilter dto.DonorSearchFilter
	list       dto.DonorListResponse
	options    dto.FilterOptionsResponse
	err        error
}

func (m *mockDonorService) Search(_ context.Context, filter dto.DonorSearchFilter) (dto.DonorListResponse, error) {
	m.lastFilter = filter
	return m.list, m.err
}

func (m *mockDonorService) Get(_ context.Context, _ uint) (dto.DonorResponse, error) {
	if m.err != nil {
		return dto.DonorResponse{}, m.err
	}
	return dto.DonorResponse{ID: 1}, nil
}

func (m *mockDonorService) FilterOptions(_ context.Context) (dto.FilterOptionsResponse, error) {
	return m.options, m.err
}

func (m *mockDonorService) SetAvailability(_ context.Context, _ service.Actor, _ dto.AvailabilityUpdateRequest) (dto.DonorResponse, error) {
	return dto.DonorResponse{}, m.err
}

func (m *mockDonorService) InvalidateFilterCache(_ context.Context) {}

func newDonorApp(svc service.DonorService) *fiber.App {
	app := fiber.New()
	handler.NewDonorHandler(svc, zerolog.New(io.Discard)).RegisterPublic(app.Group("/api/v1"))
	return app
}

func TestDonorSearchParsesQuery(t *testing.T) {
	svc := &mockDonorService{list: dto.DonorListResponse{
		Donors:     []dto.DonorResponse{{ID: 1, Name: "Rahim"}},
		Pagination: dto.PaginationMeta{TotalItems: 1, CurrentPage: 1, ItemsPerPage: 20, TotalPages: 1},
	}}
	app := newDonorApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors?blood_group=O%2B&page=2&limit=10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, svc.lastFilter.BloodGroup)
	require.Equal(t, "O+", *svc.lastFilter.BloodGroup)
	require.Equal(t, 2, svc.lastFilter.Page)
	require.Equal(t, 10, svc.lastFilter.Limit)

	var body struct {
		Success bool                  `json:"success"`
		Data    dto.DonorListResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Data.Donors, 1)
}

func TestDonorSearchInvalidFilterReturns400(t *testing.T) {
	app := newDonorApp(&mockDonorService{err: service.ErrInvalidSearchFilter})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors?blood_group=ZZ", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDonorFilterOptionsSetsCacheHeader(t *testing.T) {
	app := newDonorApp(&mockDonorService{options: dto.FilterOptionsResponse{CacheHit: true}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filters/options", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("X-Cache-Hit"))
}
