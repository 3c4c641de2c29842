package usecase

import (
	"time"

	"github.com/secmon-lab/cyberportal/pkg/domain/interfaces"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/service/slack"
)

type UseCases struct {
	repo         interfaces.Repository
	latency      Latency
	playbooks    map[types.ThreatCategory][]string
	slackService slack.Service
	slackChannel string
	baseURL      string
	now          func() time.Time
	Incident     *IncidentUseCase
}

type Option func(*UseCases)

// WithLatency enables simulated latency
func WithLatency(l Latency) Option {
	return func(uc *UseCases) {
		uc.latency = l
	}
}

// WithPlaybooks sets the remediation steps attached to new incidents per category
func WithPlaybooks(playbooks map[types.ThreatCategory][]string) Option {
	return func(uc *UseCases) {
		uc.playbooks = playbooks
	}
}

// WithSlackNotification posts incident notifications to channelID
func WithSlackNotification(svc slack.Service, channelID string) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
		uc.slackChannel = channelID
	}
}

// WithBaseURL sets the portal URL used for links in notifications
func WithBaseURL(baseURL string) Option {
	return func(uc *UseCases) {
		uc.baseURL = baseURL
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Incident = &IncidentUseCase{
		repo:         repo,
		latency:      uc.latency,
		playbooks:    uc.playbooks,
		slackService: uc.slackService,
		slackChannel: uc.slackChannel,
		baseURL:      uc.baseURL,
		now:          uc.now,
	}

	return uc
}
