package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/usecase"
	"github.com/secmon-lab/cyberportal/pkg/utils/errutil"
)

var errBadRequest = errors.New("bad request")

// statusCodeOf maps use case errors to HTTP status codes
func statusCodeOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, usecase.ErrInvalidReport),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrInvalidQuery),
		errors.Is(err, usecase.ErrAnalystRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusCodeOf(err))
}

func incidentID(r *http.Request) types.IncidentID {
	return types.IncidentID(chi.URLParam(r, "id"))
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return goerr.Wrap(errBadRequest, "malformed JSON body", goerr.V("error", err.Error()))
	}
	return nil
}

func (s *Server) listRecentHandler(w http.ResponseWriter, r *http.Request) {
	incidents, stats, err := s.incidentUC.ListRecent(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, recentResponse{
		Incidents: toIncidentResponses(incidents),
		Stats:     toStatsResponse(stats),
	})
}

func (s *Server) getIncidentHandler(w http.ResponseWriter, r *http.Request) {
	x, err := s.incidentUC.GetIncident(r.Context(), incidentID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if x == nil {
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "incident not found"})
		return
	}

	writeJSON(w, r, http.StatusOK, toIncidentResponse(x))
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseReport(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	x, err := s.incidentUC.SubmitIncident(r.Context(), *in)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, submitResponse{Success: true, IncidentID: string(x.ID)})
}

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseReport(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.incidentUC.AnalyzeReport(r.Context(), in.Category, in.Description, in.Evidence)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toAnalysisResultResponse(result))
}

func (s *Server) setStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	status, err := types.ParseIncidentStatus(req.Status)
	if err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidStatus, err.Error()))
		return
	}

	ok, err := s.incidentUC.SetStatus(r.Context(), incidentID(r), status)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, successResponse{Success: ok})
}

func (s *Server) assignHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Analyst string  `json:"analyst"`
		Notes   *string `json:"notes"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	ok, err := s.incidentUC.Assign(r.Context(), incidentID(r), req.Analyst, req.Notes)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, successResponse{Success: ok})
}

func (s *Server) investigateHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes *string `json:"notes"`
	}
	if err := decodeBody(r, &req, true); err != nil {
		handleError(w, r, err)
		return
	}

	ok, err := s.incidentUC.Investigate(r.Context(), incidentID(r), req.Notes)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, successResponse{Success: ok})
}

func (s *Server) listForAnalystHandler(w http.ResponseWriter, r *http.Request) {
	q, err := parseIncidentQuery(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	incidents, stats, err := s.incidentUC.ListForAnalyst(r.Context(), q)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, analystResponse{
		Incidents: toIncidentResponses(incidents),
		Stats:     toAnalystStatsResponse(stats),
	})
}

// parseIncidentQuery builds a query from URL parameters. Missing parameters
// keep the defaults. Severity is matched case-insensitively.
func parseIncidentQuery(r *http.Request) (model.IncidentQuery, error) {
	params := r.URL.Query()
	q := model.DefaultIncidentQuery()

	q.Search = strings.TrimSpace(params.Get("q"))
	if v := params.Get("severity"); v != "" {
		q.Severity = v
		if sev, err := types.ParseSeverity(v); err == nil {
			q.Severity = sev.String()
		}
	}
	if v := params.Get("status"); v != "" {
		q.Status = v
	}
	if v := params.Get("assignedTo"); v != "" {
		q.AssignedTo = v
	}
	if v := params.Get("unit"); v != "" {
		q.Unit = v
	}
	q.DateFrom = params.Get("from")
	q.DateTo = params.Get("to")

	if v := params.Get("sortBy"); v != "" {
		key, err := types.ParseSortKey(v)
		if err != nil {
			return q, goerr.Wrap(usecase.ErrInvalidQuery, err.Error())
		}
		q.SortBy = key
	}
	if v := params.Get("sortOrder"); v != "" {
		order, err := types.ParseSortOrder(v)
		if err != nil {
			return q, goerr.Wrap(usecase.ErrInvalidQuery, err.Error())
		}
		q.SortOrder = order
	}

	return q, nil
}
