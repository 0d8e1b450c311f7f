package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edyou/engine-dashboard/internal/models"
)

const userColumns = `id, email, first_name, last_name, COALESCE(tenant_name, ''), created_at`

func scanUser(row interface{ Scan(...interface{}) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.TenantName, &u.CreatedAt)
}

// ListTenants groups users by tenant, largest first
func (s *PostgresStore) ListTenants(ctx context.Context) ([]models.TenantItem, int64, error) {
	query := `
		SELECT COALESCE(tenant_name, '') AS tenant_name, COUNT(*) AS count
		FROM users
		GROUP BY 1
		ORDER BY 2 DESC, 1 ASC`

	rows, err := s.getDB().QueryContext(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	tenants := []models.TenantItem{}
	var total int64
	for rows.Next() {
		var t models.TenantItem
		if err := rows.Scan(&t.TenantName, &t.Count); err != nil {
			return nil, 0, fmt.Errorf("scan tenant: %w", err)
		}
		total += t.Count
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list tenants: %w", err)
	}

	return tenants, total, nil
}

// GetUserByEmail gets a user by email. Email comparison is case-insensitive.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	var u models.User
	err := scanUser(s.getDB().QueryRowContext(ctx, query, email), &u)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListUsersByTenant lists one page of a tenant's users. q matches email,
// first or last name. The returned total counts every match of the filter.
func (s *PostgresStore) ListUsersByTenant(ctx context.Context, tenantName, q string, limit, offset int) ([]models.User, int64, error) {
	where := ` WHERE COALESCE(tenant_name, '') = $1`
	args := []interface{}{tenantName}
	if q != "" {
		where += ` AND (email ILIKE $2 OR first_name ILIKE $2 OR last_name ILIKE $2)`
		args = append(args, likePattern(q))
	}

	var total int64
	if err := s.getDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + where +
		fmt.Sprintf(` ORDER BY email ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}
