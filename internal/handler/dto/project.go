package dto

// CreateProjectRequest represents the request body for creating a project.
type CreateProjectRequest struct {
	AccountID   int64  `json:"account_id,omitempty"`
	FullName    string `json:"full_name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description,omitempty"`
}
