package model

import (
	"fmt"
	"strings"
	"time"
)

// User represents an account. A user belongs to at most one organization;
// OrganizationID is nil until the user creates or joins one.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	OrganizationID *int64    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ValidateEmail checks that an email address is plausible enough to store.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email required")
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword checks minimum password requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
