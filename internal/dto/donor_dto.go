package dto

import (
	"time"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

// DonorSearchFilter describes query string filters for the public directory search.
type DonorSearchFilter struct {
	BloodGroup   *string `query:"blood_group"`
	CampusID     *uint   `query:"campus_id"`
	GroupID      *uint   `query:"group_id"`
	City         *string `query:"city"`
	District     *string `query:"district"`
	Availability *string `query:"availability" validate:"omitempty,oneof=true false"`
	Page         int     `query:"page"`
	Limit        int     `query:"limit"`
}

// AvailabilityUpdateRequest toggles the acting user's donor availability.
type AvailabilityUpdateRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// ReferenceLite summarizes a campus or group inside donor responses.
type ReferenceLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// DonorResponse is returned to API clients when viewing donor profiles.
type DonorResponse struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	BloodGroup    string         `json:"blood_group"`
	BloodGroupTag string         `json:"blood_group_display"`
	ContactNumber string         `json:"contact_number"`
	Email         *string        `json:"email"`
	District      string         `json:"district"`
	City          string         `json:"city"`
	IsAvailable   bool           `json:"is_available"`
	Tagline       *string        `json:"tagline"`
	Campus        *ReferenceLite `json:"campus"`
	Group         *ReferenceLite `json:"group"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// DonorListResponse wraps a page of directory results.
type DonorListResponse struct {
	Donors     []DonorResponse `json:"donors"`
	Pagination PaginationMeta  `json:"pagination"`
}

// NewDonorResponse converts a Donor model into a DTO.
func NewDonorResponse(model models.Donor) DonorResponse {
	response := DonorResponse{
		ID:            model.ID,
		Name:          model.Name,
		BloodGroup:    string(model.BloodGroup),
		BloodGroupTag: model.BloodGroup.Display(),
		ContactNumber: model.ContactNumber,
		Email:         model.Email,
		District:      model.District,
		City:          model.City,
		IsAvailable:   model.IsAvailable,
		Tagline:       model.Tagline,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}

	if model.Campus != nil {
		response.Campus = &ReferenceLite{ID: model.Campus.ID, Name: model.Campus.Name}
	}
	if model.Group != nil {
		response.Group = &ReferenceLite{ID: model.Group.ID, Name: model.Group.Name}
	}

	return response
}

// NewDonorResponseSlice converts donor models into DTOs.
func NewDonorResponseSlice(donors []models.Donor) []DonorResponse {
	responses := make([]DonorResponse, 0, len(donors))
	for _, donor := range donors {
		responses = append(responses, NewDonorResponse(donor))
	}
	return responses
}

// FilterOption is one selectable value in the directory filter widget.
type FilterOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilterOptionsResponse carries every selectable directory filter value.
type FilterOptionsResponse struct {
	Campuses    []FilterOption `json:"campuses"`
	Groups      []FilterOption `json:"groups"`
	BloodGroups []FilterOption `json:"blood_groups"`
	CacheHit    bool           `json:"-"`
}
