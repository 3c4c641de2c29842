package model

import (
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

const (
	// FilterAll disables a filter field
	FilterAll = "all"
	// FilterUnassigned matches incidents without an analyst
	FilterUnassigned = "unassigned"
)

// IncidentQuery filters and orders a snapshot of incidents. Filters are
// conjunctive; an empty value or FilterAll disables a filter.
type IncidentQuery struct {
	Search     string
	Severity   string
	Status     string
	AssignedTo string
	Unit       string
	DateFrom   string // inclusive, YYYY-MM-DD
	DateTo     string // inclusive, YYYY-MM-DD
	SortBy     types.SortKey
	SortOrder  types.SortOrder
}

// DefaultIncidentQuery returns a query without filters sorted by priority, descending
func DefaultIncidentQuery() IncidentQuery {
	return IncidentQuery{
		Severity:   FilterAll,
		Status:     FilterAll,
		AssignedTo: FilterAll,
		Unit:       FilterAll,
		SortBy:     types.SortKeyPriority,
		SortOrder:  types.SortOrderDesc,
	}
}

// Validate checks filter values that have a closed set of options
func (q IncidentQuery) Validate() error {
	if isActive(q.Severity) && !types.Severity(q.Severity).IsValid() {
		return goerr.New("invalid severity filter", goerr.V("severity", q.Severity))
	}
	if isActive(q.Status) && !types.IncidentStatus(q.Status).IsValid() {
		return goerr.New("invalid status filter", goerr.V("status", q.Status))
	}
	if q.SortBy != "" && !q.SortBy.IsValid() {
		return goerr.New("invalid sort key", goerr.V("sort_by", q.SortBy))
	}
	if q.SortOrder != "" && q.SortOrder != types.SortOrderAsc && q.SortOrder != types.SortOrderDesc {
		return goerr.New("invalid sort order", goerr.V("sort_order", q.SortOrder))
	}
	for _, d := range []string{q.DateFrom, q.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return goerr.Wrap(err, "invalid date filter", goerr.V("date", d))
		}
	}
	return nil
}

// Apply returns the incidents that match every active filter, ordered by the
// sort key. The input slice is not modified. Sorting is stable, so incidents
// with equal keys keep their input order.
func (q IncidentQuery) Apply(incidents []*Incident) []*Incident {
	result := make([]*Incident, 0, len(incidents))
	for _, x := range incidents {
		if q.Match(x) {
			result = append(result, x)
		}
	}

	key := q.SortBy
	if key == "" {
		key = types.SortKeyPriority
	}
	desc := q.SortOrder != types.SortOrderAsc

	sort.SliceStable(result, func(i, j int) bool {
		c := compareBy(key, result[i], result[j])
		if desc {
			return c > 0
		}
		return c < 0
	})

	return result
}

// Match reports whether the incident satisfies every active filter
func (q IncidentQuery) Match(x *Incident) bool {
	if q.Search != "" && !matchSearch(x, q.Search) {
		return false
	}
	if isActive(q.Severity) && string(x.Severity) != q.Severity {
		return false
	}
	if isActive(q.Status) && string(x.Status) != q.Status {
		return false
	}
	if isActive(q.Unit) && x.Unit != q.Unit {
		return false
	}
	if isActive(q.AssignedTo) {
		if q.AssignedTo == FilterUnassigned {
			if !x.IsUnassigned() {
				return false
			}
		} else if !strings.Contains(x.AssignedAnalyst, q.AssignedTo) {
			return false
		}
	}
	if q.DateFrom != "" || q.DateTo != "" {
		if !matchDateRange(x.Date, q.DateFrom, q.DateTo) {
			return false
		}
	}
	return true
}

func isActive(v string) bool {
	return v != "" && v != FilterAll
}

func matchSearch(x *Incident, term string) bool {
	needle := strings.ToLower(term)
	for _, field := range []string{string(x.ID), string(x.Category), x.Unit, x.SubmittedBy} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func matchDateRange(date, from, to string) bool {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	if from != "" {
		if f, err := time.Parse(DateLayout, from); err == nil && d.Before(f) {
			return false
		}
	}
	if to != "" {
		if t, err := time.Parse(DateLayout, to); err == nil && d.After(t) {
			return false
		}
	}
	return true
}

// compareBy returns -1, 0 or 1 comparing a and b on key
func compareBy(key types.SortKey, a, b *Incident) int {
	switch key {
	case types.SortKeyAIScore:
		return compareInt(a.AIScore(), b.AIScore())
	case types.SortKeyDate:
		return a.OccurredAt().Compare(b.OccurredAt())
	case types.SortKeySeverity:
		return compareInt(a.Severity.Rank(), b.Severity.Rank())
	default:
		return compareInt(a.Priority, b.Priority)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
