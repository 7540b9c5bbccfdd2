package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/mywealth/wealth-backend/pkg/db/models"
	"github.com/mywealth/wealth-backend/pkg/enums"
)

// UserDTO is the transport shape of a user.
type UserDTO struct {
	UID         string         `json:"uid"`
	Email       *string        `json:"email"`
	Role        enums.UserRole `json:"role"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

// SortField selects the listing order.
type SortField string

const (
	SortByCreatedAt   SortField = "created_at"
	SortByLastLoginAt SortField = "last_login_at"
	SortByEmail       SortField = "email"
	SortByRole        SortField = "role"
)

// ParseSortField maps query input onto a SortField, defaulting to created_at.
func ParseSortField(value string) (SortField, error) {
	switch SortField(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortByCreatedAt:
		return SortByCreatedAt, nil
	case SortByLastLoginAt:
		return SortByLastLoginAt, nil
	case SortByEmail:
		return SortByEmail, nil
	case SortByRole:
		return SortByRole, nil
	}
	return "", fmt.Errorf("invalid sort field %q", value)
}

func (f SortField) column() string {
	switch f {
	case SortByLastLoginAt, SortByEmail:
		return string(f)
	}
	return string(SortByCreatedAt)
}

// ListParams filters and pages the admin user listing.
type ListParams struct {
	Offset     int
	Limit      int
	EmailQuery string
	Role       *enums.UserRole
	SortBy     SortField
	Descending bool
}

// Actor is the authenticated caller of a privileged operation.
type Actor struct {
	UID  string
	Role enums.UserRole
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		UID:         u.UID,
		Email:       u.Email,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
