package types

import "fmt"

// IncidentStatus represents the review status of an incident
type IncidentStatus string

const (
	IncidentStatusPending       IncidentStatus = "Pending"
	IncidentStatusUnderReview   IncidentStatus = "Under Review"
	IncidentStatusInvestigating IncidentStatus = "Investigating"
	IncidentStatusResolved      IncidentStatus = "Resolved"
)

// AllIncidentStatuses returns all valid incident statuses
func AllIncidentStatuses() []IncidentStatus {
	return []IncidentStatus{
		IncidentStatusPending,
		IncidentStatusUnderReview,
		IncidentStatusInvestigating,
		IncidentStatusResolved,
	}
}

// IsValid checks if the incident status is valid
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusPending,
		IncidentStatusUnderReview,
		IncidentStatusInvestigating,
		IncidentStatusResolved:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as IncidentStatusPending.
func (s IncidentStatus) Normalize() IncidentStatus {
	if s == "" {
		return IncidentStatusPending
	}
	return s
}

// String returns the string representation of the incident status
func (s IncidentStatus) String() string {
	return string(s)
}

// ParseIncidentStatus parses a string into an IncidentStatus
func ParseIncidentStatus(s string) (IncidentStatus, error) {
	status := IncidentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid incident status: %s", s)
	}
	return status, nil
}
