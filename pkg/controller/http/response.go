package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/utils/errutil"
	"github.com/secmon-lab/cyberportal/pkg/utils/safe"
)

type evidenceResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

type analysisResultResponse struct {
	Status         string   `json:"status"`
	ThreatType     string   `json:"threatType"`
	Confidence     int      `json:"confidence"`
	Indicators     []string `json:"indicators"`
	Recommendation string   `json:"recommendation"`
}

type incidentResponse struct {
	ID              string                  `json:"id"`
	Category        string                  `json:"category"`
	Status          string                  `json:"status"`
	Date            string                  `json:"date"`
	Time            string                  `json:"time"`
	SubmittedBy     string                  `json:"submittedBy"`
	Risk            string                  `json:"risk"`
	Description     string                  `json:"description"`
	Unit            string                  `json:"unit,omitempty"`
	AnalysisResult  *analysisResultResponse `json:"analysisResult,omitempty"`
	Evidence        []evidenceResponse      `json:"evidence,omitempty"`
	AssignedAnalyst string                  `json:"assignedAnalyst,omitempty"`
	Notes           string                  `json:"notes,omitempty"`
	Playbook        []string                `json:"playbook,omitempty"`
	Priority        int                     `json:"priority,omitempty"`
}

type statsResponse struct {
	TotalReports   int `json:"totalReports"`
	PendingReview  int `json:"pendingReview"`
	CriticalAlerts int `json:"criticalAlerts"`
	ResolvedToday  int `json:"resolvedToday"`
}

type analystStatsResponse struct {
	Critical    int `json:"critical"`
	High        int `json:"high"`
	Today       int `json:"today"`
	ActiveUsers int `json:"activeUsers"`
}

type recentResponse struct {
	Incidents []incidentResponse `json:"incidents"`
	Stats     statsResponse      `json:"stats"`
}

type analystResponse struct {
	Incidents []incidentResponse   `json:"incidents"`
	Stats     analystStatsResponse `json:"stats"`
}

type submitResponse struct {
	Success    bool   `json:"success"`
	IncidentID string `json:"incidentId"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toAnalysisResultResponse(a *model.AnalysisResult) *analysisResultResponse {
	if a == nil {
		return nil
	}
	indicators := a.Indicators
	if indicators == nil {
		indicators = []string{}
	}
	return &analysisResultResponse{
		Status:         a.Status,
		ThreatType:     a.ThreatType,
		Confidence:     a.Confidence,
		Indicators:     indicators,
		Recommendation: a.Recommendation,
	}
}

func toIncidentResponse(x *model.Incident) incidentResponse {
	resp := incidentResponse{
		ID:              string(x.ID),
		Category:        x.Category.String(),
		Status:          x.Status.Normalize().String(),
		Date:            x.Date,
		Time:            x.Time,
		SubmittedBy:     x.SubmittedBy,
		Risk:            x.Severity.String(),
		Description:     x.Description,
		Unit:            x.Unit,
		AnalysisResult:  toAnalysisResultResponse(x.AnalysisResult),
		AssignedAnalyst: x.AssignedAnalyst,
		Notes:           x.Notes,
		Playbook:        x.Playbook,
		Priority:        x.Priority,
	}
	for _, e := range x.Evidence {
		resp.Evidence = append(resp.Evidence, evidenceResponse{Name: e.Name, Type: e.Type, URL: e.URL})
	}
	return resp
}

func toIncidentResponses(incidents []*model.Incident) []incidentResponse {
	resp := make([]incidentResponse, len(incidents))
	for i, x := range incidents {
		resp[i] = toIncidentResponse(x)
	}
	return resp
}

func toStatsResponse(s model.Stats) statsResponse {
	return statsResponse{
		TotalReports:   s.TotalReports,
		PendingReview:  s.PendingReview,
		CriticalAlerts: s.CriticalAlerts,
		ResolvedToday:  s.ResolvedToday,
	}
}

func toAnalystStatsResponse(s model.AnalystStats) analystStatsResponse {
	return analystStatsResponse{
		Critical:    s.Critical,
		High:        s.High,
		Today:       s.Today,
		ActiveUsers: s.ActiveUsers,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
