package types

import "fmt"

// SortKey selects the incident attribute used to order query results
type SortKey string

const (
	SortKeyPriority SortKey = "priority"
	SortKeyAIScore  SortKey = "aiScore"
	SortKeyDate     SortKey = "date"
	SortKeySeverity SortKey = "severity"
)

// IsValid checks if the sort key is supported
func (k SortKey) IsValid() bool {
	switch k {
	case SortKeyPriority, SortKeyAIScore, SortKeyDate, SortKeySeverity:
		return true
	default:
		return false
	}
}

// ParseSortKey parses a string into a SortKey. "confidence" is accepted as an
// alias of aiScore.
func ParseSortKey(s string) (SortKey, error) {
	if s == "confidence" {
		return SortKeyAIScore, nil
	}
	k := SortKey(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid sort key: %s", s)
	}
	return k, nil
}

// SortOrder is the direction applied after key extraction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// ParseSortOrder parses a string into a SortOrder
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortOrderAsc, SortOrderDesc:
		return SortOrder(s), nil
	default:
		return "", fmt.Errorf("invalid sort order: %s", s)
	}
}
