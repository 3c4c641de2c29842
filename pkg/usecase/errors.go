package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Validation errors
	ErrInvalidReport   = errors.New("invalid incident report")
	ErrInvalidStatus   = errors.New("invalid incident status")
	ErrInvalidQuery    = errors.New("invalid incident query")
	ErrAnalystRequired = errors.New("analyst is required")
)

// Context keys for error values
const (
	IncidentIDKey = "incident_id"
	StatusKey     = "status"
	AnalystKey    = "analyst"
)
