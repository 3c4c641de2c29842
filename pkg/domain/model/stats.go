package model

import "github.com/secmon-lab/cyberportal/pkg/domain/types"

// Stats summarises the incident collection for the personnel dashboard
type Stats struct {
	TotalReports   int
	PendingReview  int
	CriticalAlerts int
	ResolvedToday  int
}

// AnalystStats summarises the incident collection for the analyst dashboard
type AnalystStats struct {
	Critical    int
	High        int
	Today       int
	ActiveUsers int
}

// ComputeStats derives Stats from incidents. today is a YYYY-MM-DD date;
// incidents carry no resolution timestamp, so ResolvedToday counts resolved
// incidents reported on that date.
func ComputeStats(incidents []*Incident, today string) Stats {
	var s Stats
	for _, x := range incidents {
		s.TotalReports++
		switch x.Status {
		case types.IncidentStatusPending:
			s.PendingReview++
		case types.IncidentStatusResolved:
			if x.Date == today {
				s.ResolvedToday++
			}
		}
		if x.Severity == types.SeverityCritical {
			s.CriticalAlerts++
		}
	}
	return s
}

// ComputeAnalystStats derives AnalystStats from incidents. ActiveUsers counts
// distinct reporters.
func ComputeAnalystStats(incidents []*Incident, today string) AnalystStats {
	var s AnalystStats
	reporters := make(map[string]struct{})
	for _, x := range incidents {
		switch x.Severity {
		case types.SeverityCritical:
			s.Critical++
		case types.SeverityHigh:
			s.High++
		}
		if x.Date == today {
			s.Today++
		}
		if x.SubmittedBy != "" {
			reporters[x.SubmittedBy] = struct{}{}
		}
	}
	s.ActiveUsers = len(reporters)
	return s
}
