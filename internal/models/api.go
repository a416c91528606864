package models

// ErrorResponse is the standard JSON error body returned by the HTTP layer.
type ErrorResponse struct {
	Error string `json:"error"`
}
