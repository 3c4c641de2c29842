package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

// UnassignedAnalyst is the placeholder some clients send instead of leaving
// the analyst empty
const UnassignedAnalyst = "Unassigned"

const (
	// DateLayout is the layout of Incident.Date
	DateLayout = "2006-01-02"
	// TimeLayout is the layout of Incident.Time
	TimeLayout = "15:04"
)

// Incident is a reported cyber-security event tracked through the review lifecycle
type Incident struct {
	ID              types.IncidentID
	Category        types.ThreatCategory
	Status          types.IncidentStatus
	Severity        types.Severity
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
	SubmittedBy     string
	Unit            string
	Description     string
	AnalysisResult  *AnalysisResult
	Evidence        []Evidence
	AssignedAnalyst string
	Notes           string
	Playbook        []string
	Priority        int // higher is more urgent, 0 when unranked
	CreatedAt       time.Time
}

// AnalysisResult is the outcome of the automated threat analysis of a report
type AnalysisResult struct {
	Status         string // MALICIOUS or BENIGN
	ThreatType     string
	Confidence     int // 0..100
	Indicators     []string
	Recommendation string
}

// Evidence is an attachment (file or URL) submitted with a report
type Evidence struct {
	Name string
	Type string // MIME type or a coarse tag such as "image", "text", "url"
	URL  string
}

// EvidenceTypeURL tags evidence that is a link rather than an uploaded file
const EvidenceTypeURL = "url"

// IsUnassignedName reports whether name denotes no analyst: empty or the
// UnassignedAnalyst placeholder in any case
func IsUnassignedName(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.EqualFold(name, UnassignedAnalyst)
}

// IsUnassigned reports whether no analyst owns the incident
func (x *Incident) IsUnassigned() bool {
	return IsUnassignedName(x.AssignedAnalyst)
}

// AIScore returns the analysis confidence, or 0 when the incident was not analysed
func (x *Incident) AIScore() int {
	if x.AnalysisResult == nil {
		return 0
	}
	return x.AnalysisResult.Confidence
}

// Assign hands the incident to an analyst and moves it to Under Review.
// A non-nil notes value replaces any existing notes.
func (x *Incident) Assign(analyst string, notes *string) {
	x.AssignedAnalyst = analyst
	x.Status = types.IncidentStatusUnderReview
	if notes != nil {
		x.Notes = *notes
	}
}

// Investigate moves the incident to Investigating. A non-nil notes value is
// appended to existing notes separated by a blank line. Resolved incidents are
// reopened.
func (x *Incident) Investigate(notes *string) {
	x.Status = types.IncidentStatusInvestigating
	if notes != nil {
		x.AppendNotes(*notes)
	}
}

// AppendNotes adds text to the notes, joining with a blank line
func (x *Incident) AppendNotes(text string) {
	if x.Notes == "" {
		x.Notes = text
		return
	}
	x.Notes = x.Notes + "\n\n" + text
}

// OccurredAt combines Date and Time. It returns the zero time when Date
// cannot be parsed; a missing or malformed Time counts as midnight.
func (x *Incident) OccurredAt() time.Time {
	d, err := time.Parse(DateLayout, x.Date)
	if err != nil {
		return time.Time{}
	}
	if t, err := time.Parse(TimeLayout, x.Time); err == nil {
		d = d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}
	return d
}

// Copy returns a deep copy of the incident
func (x *Incident) Copy() *Incident {
	copied := *x

	if x.AnalysisResult != nil {
		ar := *x.AnalysisResult
		ar.Indicators = copyStrings(x.AnalysisResult.Indicators)
		copied.AnalysisResult = &ar
	}
	if x.Evidence != nil {
		copied.Evidence = make([]Evidence, len(x.Evidence))
		copy(copied.Evidence, x.Evidence)
	}
	copied.Playbook = copyStrings(x.Playbook)

	return &copied
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
