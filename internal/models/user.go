package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a learner known to the engine. Email is the identity.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	FirstName  *string   `json:"first_name,omitempty" db:"first_name"`
	LastName   *string   `json:"last_name,omitempty" db:"last_name"`
	Name       *string   `json:"name,omitempty" db:"-"`
	TenantName string    `json:"tenantName" db:"tenant_name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DisplayName returns the best human name available, or "" when none is set
func (u User) DisplayName() string {
	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		return strings.TrimSpace(*u.Name)
	}
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return strings.Join(parts, " ")
}

// UsersResponse is one page of a tenant's users. Count is the page size,
// Total the number of users matching the filter.
type UsersResponse struct {
	Items []User `json:"items"`
	Count int    `json:"count"`
	Total int64  `json:"total"`
}
