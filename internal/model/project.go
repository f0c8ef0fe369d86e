package model

import "time"

// ProjectState is the lifecycle state of a project.
type ProjectState string

// Project states. Deleted is part of the vocabulary but deletion removes
// the row, so stored projects are only ever active or cancelled.
const (
	ProjectActive    ProjectState = "active"
	ProjectCancelled ProjectState = "cancelled"
	ProjectDeleted   ProjectState = "deleted"
)

// IsValid reports whether s is a known state.
func (s ProjectState) IsValid() bool {
	switch s {
	case ProjectActive, ProjectCancelled, ProjectDeleted:
		return true
	}
	return false
}

// Project is a resource owned by exactly one account.
type Project struct {
	ID          int64        `json:"id"`
	AccountID   int64        `json:"account_id"`
	FullName    string       `json:"full_name"`
	ShortName   string       `json:"short_name"`
	Description string       `json:"description"`
	State       ProjectState `json:"state"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsActive returns true if the project has not been cancelled.
func (p *Project) IsActive() bool {
	return p.State == ProjectActive
}

// OwnedBy reports whether accountID owns the project.
func (p *Project) OwnedBy(accountID int64) bool {
	return p.AccountID == accountID
}

// ProjectResponse is a project entry in list responses.
type ProjectResponse struct {
	ID          int64        `json:"id"`
	FullName    string       `json:"full_name"`
	ShortName   string       `json:"short_name"`
	Description string       `json:"description"`
	State       ProjectState `json:"state"`
}

// ToResponse converts a Project to ProjectResponse.
func (p *Project) ToResponse() ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		FullName:    p.FullName,
		ShortName:   p.ShortName,
		Description: p.Description,
		State:       p.State,
	}
}
