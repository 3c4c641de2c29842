package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/domain/interfaces"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/service/slack"
	"github.com/secmon-lab/cyberportal/pkg/utils/errutil"
	"github.com/secmon-lab/cyberportal/pkg/utils/logging"
	goslack "github.com/slack-go/slack"
)

// DigestWorker periodically posts the triage dashboard statistics to a Slack channel
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
type DigestWorker struct {
	repo         interfaces.Repository
	slackService slack.Service
	channelID    string
	interval     time.Duration
	now          func() time.Time
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// DigestOption configures a DigestWorker
type DigestOption func(*DigestWorker)

// WithDigestClock replaces time.Now
func WithDigestClock(now func() time.Time) DigestOption {
	return func(w *DigestWorker) {
		w.now = now
	}
}

// NewDigestWorker creates a worker posting to channelID every interval
func NewDigestWorker(repo interfaces.Repository, slackSvc slack.Service, channelID string, interval time.Duration, opts ...DigestOption) *DigestWorker {
	w := &DigestWorker{
		repo:         repo,
		slackService: slackSvc,
		channelID:    channelID,
		interval:     interval,
		now:          time.Now,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background loop without blocking
func (w *DigestWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("digest interval must be positive", goerr.V("interval", w.interval))
	}

	logging.From(ctx).Info("Digest worker starting",
		"interval", w.interval.String(),
		"channel_id", w.channelID)

	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *DigestWorker) Stop() {
	logging.Default().Info("Digest worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Digest worker stopped")
}

func (w *DigestWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Post(ctx); err != nil {
				errutil.Handle(ctx, err, "Digest post failed (will retry next interval)")
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("Digest worker context cancelled")
			return
		}
	}
}

// Post computes the current statistics and posts a single digest
func (w *DigestWorker) Post(ctx context.Context) error {
	incidents, err := w.repo.Incident().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list incidents for digest")
	}

	today := w.now().Format(model.DateLayout)
	stats := model.ComputeStats(incidents, today)
	analyst := model.ComputeAnalystStats(incidents, today)

	pending, err := w.repo.Incident().ListByStatus(ctx, types.IncidentStatusPending)
	if err != nil {
		return goerr.Wrap(err, "failed to list pending incidents for digest")
	}

	blocks, text := buildDigestBlocks(stats, analyst, pending, today)
	if _, err := w.slackService.PostMessage(ctx, w.channelID, blocks, text); err != nil {
		return goerr.Wrap(err, "failed to post digest", goerr.V("channel_id", w.channelID))
	}

	logging.From(ctx).Info("Digest posted",
		"total", stats.TotalReports,
		"pending", stats.PendingReview,
		"critical", stats.CriticalAlerts)
	return nil
}

// maxDigestQueue is the number of oldest pending incidents listed in a digest
const maxDigestQueue = 5

func buildDigestBlocks(stats model.Stats, analyst model.AnalystStats, pending []*model.Incident, date string) ([]goslack.Block, string) {
	text := fmt.Sprintf("Incident digest %s: %d reports, %d pending, %d critical",
		date, stats.TotalReports, stats.PendingReview, stats.CriticalAlerts)

	field := func(label string, v int) *goslack.TextBlockObject {
		return goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*%s*\n%d", label, v), false, false)
	}

	blocks := []goslack.Block{
		goslack.NewHeaderBlock(goslack.NewTextBlockObject(goslack.PlainTextType,
			"Incident digest "+date, false, false)),
		goslack.NewSectionBlock(nil, []*goslack.TextBlockObject{
			field("Total Reports", stats.TotalReports),
			field("Pending Review", stats.PendingReview),
			field("Critical Alerts", stats.CriticalAlerts),
			field("Resolved Today", stats.ResolvedToday),
			field("Reported Today", analyst.Today),
			field("Active Users", analyst.ActiveUsers),
		}, nil),
	}

	if len(pending) > 0 {
		var b strings.Builder
		b.WriteString("*Awaiting triage*\n")
		for i, x := range pending {
			if i == maxDigestQueue {
				fmt.Fprintf(&b, "… and %d more\n", len(pending)-maxDigestQueue)
				break
			}
			fmt.Fprintf(&b, "• %s %s (%s, reported %s)\n", x.ID, x.Category, x.Severity, x.Date)
		}
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, b.String(), false, false), nil, nil))
	}

	return blocks, text
}
