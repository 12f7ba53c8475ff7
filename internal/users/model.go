package users

import (
	"time"

	"patta-backend/internal/shared/auth"
)

// Profile carries the descriptive fields of an account, NGO details included.
type Profile struct {
	Name            string `json:"name,omitempty"`
	Organization    string `json:"organization,omitempty"`
	District        string `json:"district,omitempty"`
	AreaOfOperation string `json:"areaOfOperation,omitempty"`
	ContactNumber   string `json:"contactNumber,omitempty"`
	Address         string `json:"address,omitempty"`
}

// User is a platform account. NGOs start unapproved and cannot log in until
// a ministry account approves them.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         auth.Role
	IsApproved   bool
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
