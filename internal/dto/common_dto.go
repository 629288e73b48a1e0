package dto

import (
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

// PaginationMeta describes the paging envelope returned by list endpoints.
type PaginationMeta struct {
	TotalItems   int64 `json:"total_items"`
	CurrentPage  int   `json:"current_page"`
	ItemsPerPage int   `json:"items_per_page"`
	TotalPages   int   `json:"total_pages"`
}

// UserLite summarizes an account without exposing full profile data.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserLite converts a user model into its summary form.
func NewUserLite(model models.User) UserLite {
	return UserLite{ID: model.ID, Name: model.Name, Email: model.Email}
}
