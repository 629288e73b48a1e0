package dto

import (
	"time"

	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

// ReferenceCreateRequest names a new campus or group.
type ReferenceCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=160"`
}

// ReferenceUpdateRequest renames an existing campus or group.
type ReferenceUpdateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=160"`
}

// ReferenceResponse is the admin view of a campus or group.
type ReferenceResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	DonorCount int64     `json:"donor_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewReferenceResponse converts a reference entity into a DTO.
func NewReferenceResponse(entity repository.ReferenceEntity) ReferenceResponse {
	return ReferenceResponse{
		ID:         entity.ID,
		Name:       entity.Name,
		DonorCount: entity.DonorCount,
		CreatedAt:  entity.CreatedAt,
		UpdatedAt:  entity.UpdatedAt,
	}
}

// NewReferenceResponseSlice converts reference entities into DTOs.
func NewReferenceResponseSlice(entities []repository.ReferenceEntity) []ReferenceResponse {
	responses := make([]ReferenceResponse, 0, len(entities))
	for _, entity := range entities {
		responses = append(responses, NewReferenceResponse(entity))
	}
	return responses
}
