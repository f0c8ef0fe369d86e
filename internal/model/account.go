// Package model defines domain entities for the application.
package model

import "time"

// Account is an end user able to authenticate and own projects.
// Handle and Email stay unique across all accounts, active or not.
type Account struct {
	ID           int64     `json:"id"`
	Handle       string    `json:"handle"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"` // Never serialize
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID        int64     `json:"id"`
	Handle    string    `json:"handle"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts an Account to AccountResponse.
func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Handle:    a.Handle,
		Email:     a.Email,
		FullName:  a.FullName,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}
