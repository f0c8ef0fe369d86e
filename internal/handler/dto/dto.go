// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreatedResponse carries the id of a newly created resource.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// MessageResponse acknowledges an operation without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}
