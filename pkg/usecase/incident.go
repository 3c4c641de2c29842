package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/domain/interfaces"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/service/slack"
	"github.com/secmon-lab/cyberportal/pkg/utils/async"
	"github.com/secmon-lab/cyberportal/pkg/utils/logging"
	goslack "github.com/slack-go/slack"
)

type IncidentUseCase struct {
	repo         interfaces.Repository
	latency      Latency
	playbooks    map[types.ThreatCategory][]string
	slackService slack.Service
	slackChannel string
	baseURL      string
	now          func() time.Time
}

// SubmitIncidentInput is a report as sent by reporting personnel
type SubmitIncidentInput struct {
	Category    types.ThreatCategory
	Description string
	SubmittedBy string
	Unit        string
	Evidence    []model.Evidence
	Analysis    *model.AnalysisResult
}

// Validate checks the fields required to accept a report
func (in *SubmitIncidentInput) Validate() error {
	if err := in.Category.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidReport, err.Error(), goerr.V("category", in.Category))
	}
	if strings.TrimSpace(in.Description) == "" {
		return goerr.Wrap(ErrInvalidReport, "description is required")
	}
	if len(in.Evidence) == 0 {
		return goerr.Wrap(ErrInvalidReport, "at least one evidence item is required")
	}
	for i, e := range in.Evidence {
		if e.Name == "" {
			return goerr.Wrap(ErrInvalidReport, "evidence name is required", goerr.V("index", i))
		}
	}
	return nil
}

func (uc *IncidentUseCase) today() string {
	return uc.now().Format(model.DateLayout)
}

// ListRecent returns every incident in insertion order with freshly computed stats
func (uc *IncidentUseCase) ListRecent(ctx context.Context) ([]*model.Incident, model.Stats, error) {
	if err := wait(ctx, uc.latency.List); err != nil {
		return nil, model.Stats{}, err
	}

	incidents, err := uc.repo.Incident().List(ctx)
	if err != nil {
		return nil, model.Stats{}, goerr.Wrap(err, "failed to list incidents")
	}

	return incidents, model.ComputeStats(incidents, uc.today()), nil
}

// ListForAnalyst returns the incidents selected by q. Stats describe the whole
// collection, not just the selection.
func (uc *IncidentUseCase) ListForAnalyst(ctx context.Context, q model.IncidentQuery) ([]*model.Incident, model.AnalystStats, error) {
	if err := q.Validate(); err != nil {
		return nil, model.AnalystStats{}, goerr.Wrap(ErrInvalidQuery, err.Error())
	}
	if err := wait(ctx, uc.latency.List); err != nil {
		return nil, model.AnalystStats{}, err
	}

	incidents, err := uc.repo.Incident().List(ctx)
	if err != nil {
		return nil, model.AnalystStats{}, goerr.Wrap(err, "failed to list incidents")
	}

	return q.Apply(incidents), model.ComputeAnalystStats(incidents, uc.today()), nil
}

// GetIncident returns the incident with the given ID.
// Returns nil, nil if it does not exist.
func (uc *IncidentUseCase) GetIncident(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	if err := wait(ctx, uc.latency.Lookup); err != nil {
		return nil, err
	}

	x, err := uc.repo.Incident().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get incident", goerr.V(IncidentIDKey, id))
	}
	return x, nil
}

// SubmitIncident validates a report and stores it as a new Pending incident
func (uc *IncidentUseCase) SubmitIncident(ctx context.Context, in SubmitIncidentInput) (*model.Incident, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := wait(ctx, uc.latency.Submit); err != nil {
		return nil, err
	}

	// Date, Time and the ID year share one instant and zone
	now := uc.now()
	severity := types.SeverityMedium
	if in.Analysis != nil {
		if s, err := types.ParseSeverity(in.Analysis.Recommendation); err == nil {
			severity = s
		}
	}

	x := &model.Incident{
		Category:       in.Category,
		Status:         types.IncidentStatusPending,
		Severity:       severity,
		Date:           now.Format(model.DateLayout),
		Time:           now.Format(model.TimeLayout),
		SubmittedBy:    in.SubmittedBy,
		Unit:           in.Unit,
		Description:    in.Description,
		AnalysisResult: in.Analysis,
		Evidence:       in.Evidence,
		Playbook:       append([]string(nil), uc.playbooks[in.Category]...),
		Priority:       severity.Rank(),
		CreatedAt:      now,
	}

	// the write completes even if the caller goes away
	created, err := uc.repo.Incident().Create(context.WithoutCancel(ctx), x)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create incident", goerr.V("category", in.Category))
	}

	logging.From(ctx).Info("incident submitted",
		"id", created.ID,
		"category", created.Category,
		"severity", created.Severity,
		"evidence", len(created.Evidence),
	)

	uc.notify(ctx, created, buildSubmittedBlocks)

	return created, nil
}

// SetStatus overwrites the status of an incident. It returns false if the
// incident does not exist.
func (uc *IncidentUseCase) SetStatus(ctx context.Context, id types.IncidentID, status types.IncidentStatus) (bool, error) {
	if !status.IsValid() {
		return false, goerr.Wrap(ErrInvalidStatus, "unknown status", goerr.V(StatusKey, status), goerr.V(IncidentIDKey, id))
	}

	updated, err := uc.update(ctx, id, func(x *model.Incident) error {
		x.Status = status
		return nil
	})
	if err != nil || updated == nil {
		return false, err
	}

	logging.From(ctx).Info("incident status changed", "id", id, "status", status)
	return true, nil
}

// Assign hands an incident to an analyst and moves it to Under Review. notes,
// when non-nil, replace the existing notes. It returns false if the incident
// does not exist.
func (uc *IncidentUseCase) Assign(ctx context.Context, id types.IncidentID, analyst string, notes *string) (bool, error) {
	analyst = strings.TrimSpace(analyst)
	if model.IsUnassignedName(analyst) {
		return false, goerr.Wrap(ErrAnalystRequired, "cannot assign incident",
			goerr.V(IncidentIDKey, id), goerr.V(AnalystKey, analyst))
	}

	updated, err := uc.update(ctx, id, func(x *model.Incident) error {
		x.Assign(analyst, notes)
		return nil
	})
	if err != nil || updated == nil {
		return false, err
	}

	logging.From(ctx).Info("incident assigned", "id", id, AnalystKey, analyst)
	uc.notify(ctx, updated, buildAssignedBlocks)
	return true, nil
}

// Investigate moves an incident to Investigating and appends notes when
// non-nil. Resolved incidents are reopened. It returns false if the incident
// does not exist.
func (uc *IncidentUseCase) Investigate(ctx context.Context, id types.IncidentID, notes *string) (bool, error) {
	updated, err := uc.update(ctx, id, func(x *model.Incident) error {
		x.Investigate(notes)
		return nil
	})
	if err != nil || updated == nil {
		return false, err
	}

	logging.From(ctx).Info("incident under investigation", "id", id)
	return true, nil
}

func (uc *IncidentUseCase) update(ctx context.Context, id types.IncidentID, fn interfaces.IncidentMutator) (*model.Incident, error) {
	if err := wait(ctx, uc.latency.StatusUpdate); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Incident().Update(context.WithoutCancel(ctx), id, fn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update incident", goerr.V(IncidentIDKey, id))
	}
	return updated, nil
}

// notify posts a message about x to the configured Slack channel without
// blocking the caller
func (uc *IncidentUseCase) notify(ctx context.Context, x *model.Incident, build func(*model.Incident, string) ([]goslack.Block, string)) {
	if uc.slackService == nil || uc.slackChannel == "" {
		return
	}

	blocks, text := build(x, uc.incidentURL(x.ID))
	async.Dispatch(ctx, func(ctx context.Context) error {
		if _, err := uc.slackService.PostMessage(ctx, uc.slackChannel, blocks, text); err != nil {
			return goerr.Wrap(err, "failed to post incident notification",
				goerr.V(IncidentIDKey, x.ID),
				goerr.V("channel_id", uc.slackChannel))
		}
		return nil
	})
}

func (uc *IncidentUseCase) incidentURL(id types.IncidentID) string {
	if uc.baseURL == "" {
		return ""
	}
	return strings.TrimRight(uc.baseURL, "/") + "/incidents/" + string(id)
}
