package api

import "github.com/phrazzld/tasklane-api/internal/domain"

// AuthResponse is the body of a successful signup or signin.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    AuthUserData `json:"data"`
}

// AuthUserData identifies the signed-in user.
type AuthUserData struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
	// ExpiresAt is the RFC 3339 expiry of the session token.
	ExpiresAt string `json:"expires_at"`
}

// MessageResponse is a body carrying only a message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UploadResponse is the body of a committed CSV import.
type UploadResponse struct {
	Persisted int64 `json:"persisted"`
}

// UploadErrorDetails lists the rows that caused an import to be rejected.
type UploadErrorDetails struct {
	Rows         []RowErrorResponse `json:"rows"`
	TotalInvalid int                `json:"total_invalid"`
}

// RowErrorResponse describes one rejected row, numbered from 1 after the header.
type RowErrorResponse struct {
	Row    int                 `json:"row"`
	Reason string              `json:"reason"`
	Errors []domain.FieldError `json:"errors"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// VersionResponse is the body of the version endpoint.
type VersionResponse struct {
	Version string `json:"version"`
}
