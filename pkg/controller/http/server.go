package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/usecase"
)

// IncidentUseCase is the set of incident operations served over HTTP
type IncidentUseCase interface {
	ListRecent(ctx context.Context) ([]*model.Incident, model.Stats, error)
	ListForAnalyst(ctx context.Context, q model.IncidentQuery) ([]*model.Incident, model.AnalystStats, error)
	GetIncident(ctx context.Context, id types.IncidentID) (*model.Incident, error)
	SubmitIncident(ctx context.Context, in usecase.SubmitIncidentInput) (*model.Incident, error)
	AnalyzeReport(ctx context.Context, category types.ThreatCategory, description string, evidence []model.Evidence) (*model.AnalysisResult, error)
	SetStatus(ctx context.Context, id types.IncidentID, status types.IncidentStatus) (bool, error)
	Assign(ctx context.Context, id types.IncidentID, analyst string, notes *string) (bool, error)
	Investigate(ctx context.Context, id types.IncidentID, notes *string) (bool, error)
}

var _ IncidentUseCase = (*usecase.IncidentUseCase)(nil)

// DefaultMaxUploadSize bounds the in-memory part of a multipart report
const DefaultMaxUploadSize int64 = 32 << 20

type Server struct {
	router        *chi.Mux
	incidentUC    IncidentUseCase
	maxUploadSize int64
}

type Options func(*Server)

// WithMaxUploadSize sets the maximum accepted size of a report submission
func WithMaxUploadSize(n int64) Options {
	return func(s *Server) {
		s.maxUploadSize = n
	}
}

func New(incidentUC IncidentUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		incidentUC:    incidentUC,
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/complaints", func(r chi.Router) {
		r.Get("/recent", s.listRecentHandler)
		r.Post("/", s.submitHandler)
		r.Post("/analyze", s.analyzeHandler)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getIncidentHandler)
			r.Post("/status", s.setStatusHandler)
			r.Post("/assign", s.assignHandler)
			r.Post("/investigate", s.investigateHandler)
		})
	})

	r.Get("/api/analyst/incidents", s.listForAnalystHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
