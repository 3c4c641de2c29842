package types

import "fmt"

// Severity represents the risk level of an incident
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// AllSeverities returns all valid severities, most urgent first
func AllSeverities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
	}
}

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// Rank returns the ordering weight of the severity. Critical=4, High=3,
// Medium=2, Low=1 and 0 for anything else.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity. Matching is case-insensitive
// so that analysis recommendations such as "CRITICAL" map onto a severity.
func ParseSeverity(s string) (Severity, error) {
	for _, sev := range AllSeverities() {
		if equalFold(string(sev), s) {
			return sev, nil
		}
	}
	return "", fmt.Errorf("invalid severity: %s", s)
}
