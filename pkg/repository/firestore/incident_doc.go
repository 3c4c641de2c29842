package firestore

import (
	"time"

	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

type incidentDoc struct {
	ID              string             `firestore:"id"`
	Category        string             `firestore:"category"`
	Status          string             `firestore:"status"`
	Severity        string             `firestore:"severity"`
	Date            string             `firestore:"date"`
	Time            string             `firestore:"time"`
	SubmittedBy     string             `firestore:"submitted_by"`
	Unit            string             `firestore:"unit"`
	Description     string             `firestore:"description"`
	AnalysisResult  *analysisResultDoc `firestore:"analysis_result,omitempty"`
	Evidence        []evidenceDoc      `firestore:"evidence"`
	AssignedAnalyst string             `firestore:"assigned_analyst"`
	Notes           string             `firestore:"notes"`
	Playbook        []string           `firestore:"playbook"`
	Priority        int64              `firestore:"priority"`
	CreatedAt       time.Time          `firestore:"created_at"`
}

type analysisResultDoc struct {
	Status         string   `firestore:"status"`
	ThreatType     string   `firestore:"threat_type"`
	Confidence     int64    `firestore:"confidence"`
	Indicators     []string `firestore:"indicators"`
	Recommendation string   `firestore:"recommendation"`
}

type evidenceDoc struct {
	Name string `firestore:"name"`
	Type string `firestore:"type"`
	URL  string `firestore:"url"`
}

func toIncidentDoc(x *model.Incident) *incidentDoc {
	doc := &incidentDoc{
		ID:              string(x.ID),
		Category:        string(x.Category),
		Status:          string(x.Status),
		Severity:        string(x.Severity),
		Date:            x.Date,
		Time:            x.Time,
		SubmittedBy:     x.SubmittedBy,
		Unit:            x.Unit,
		Description:     x.Description,
		AssignedAnalyst: x.AssignedAnalyst,
		Notes:           x.Notes,
		Playbook:        x.Playbook,
		Priority:        int64(x.Priority),
		CreatedAt:       x.CreatedAt,
	}
	if x.AnalysisResult != nil {
		doc.AnalysisResult = &analysisResultDoc{
			Status:         x.AnalysisResult.Status,
			ThreatType:     x.AnalysisResult.ThreatType,
			Confidence:     int64(x.AnalysisResult.Confidence),
			Indicators:     x.AnalysisResult.Indicators,
			Recommendation: x.AnalysisResult.Recommendation,
		}
	}
	for _, e := range x.Evidence {
		doc.Evidence = append(doc.Evidence, evidenceDoc(e))
	}
	return doc
}

func (d *incidentDoc) toModel() *model.Incident {
	x := &model.Incident{
		ID:              types.IncidentID(d.ID),
		Category:        types.ThreatCategory(d.Category),
		Status:          types.IncidentStatus(d.Status).Normalize(),
		Severity:        types.Severity(d.Severity),
		Date:            d.Date,
		Time:            d.Time,
		SubmittedBy:     d.SubmittedBy,
		Unit:            d.Unit,
		Description:     d.Description,
		AssignedAnalyst: d.AssignedAnalyst,
		Notes:           d.Notes,
		Playbook:        d.Playbook,
		Priority:        int(d.Priority),
		CreatedAt:       d.CreatedAt,
	}
	if d.AnalysisResult != nil {
		x.AnalysisResult = &model.AnalysisResult{
			Status:         d.AnalysisResult.Status,
			ThreatType:     d.AnalysisResult.ThreatType,
			Confidence:     int(d.AnalysisResult.Confidence),
			Indicators:     d.AnalysisResult.Indicators,
			Recommendation: d.AnalysisResult.Recommendation,
		}
	}
	for _, e := range d.Evidence {
		x.Evidence = append(x.Evidence, model.Evidence(e))
	}
	return x
}
