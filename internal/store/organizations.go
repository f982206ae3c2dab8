package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"

	"stocktrail/internal/model"
)

// joinCodeCharset is the alphabet used for organization join codes.
const joinCodeCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CreateOrganization creates an organization with a freshly generated join
// code. Code collisions are retried a few times before giving up.
func CreateOrganization(ctx context.Context, db *sql.DB, name string) (*model.Organization, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateJoinCode(model.JoinCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generating join code: %w", err)
		}

		result, err := db.ExecContext(ctx,
			`INSERT INTO organizations (name, code) VALUES (?, ?)`,
			name, code,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				continue
			}
			return nil, fmt.Errorf("creating organization: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("getting organization id: %w", err)
		}

		return GetOrganization(ctx, db, id)
	}

	return nil, fmt.Errorf("creating organization: could not generate a unique join code")
}

// GetOrganization returns an organization by ID.
func GetOrganization(ctx context.Context, db *sql.DB, id int64) (*model.Organization, error) {
	org := &model.Organization{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, code, created_at FROM organizations WHERE id = ?`, id,
	).Scan(&org.ID, &org.Name, &org.Code, &org.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}
	return org, nil
}

// GetOrganizationByCode returns the organization with the given join code.
func GetOrganizationByCode(ctx context.Context, db *sql.DB, code string) (*model.Organization, error) {
	org := &model.Organization{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, code, created_at FROM organizations WHERE code = ?`, code,
	).Scan(&org.ID, &org.Name, &org.Code, &org.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting organization by code: %w", err)
	}
	return org, nil
}

// generateJoinCode creates a random join code of the given length.
func generateJoinCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = joinCodeCharset[int(buf[i])%len(joinCodeCharset)]
	}
	return string(buf), nil
}
