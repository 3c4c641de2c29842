package config

import (
	_ "embed"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

//go:embed defaults/app.toml
var defaultAppConfig []byte

// AppConfig represents the application configuration
type AppConfig struct {
	Categories []Category     `toml:"category"`
	Incidents  []SeedIncident `toml:"incident"`
}

// Category holds the playbook attached to new incidents of a threat category
type Category struct {
	Name     string   `toml:"name"`
	Playbook []string `toml:"playbook"`
}

// SeedIncident is an incident loaded at startup
type SeedIncident struct {
	ID              string         `toml:"id"`
	Category        string         `toml:"category"`
	Status          string         `toml:"status"`
	Date            string         `toml:"date"`
	Time            string         `toml:"time"`
	SubmittedBy     string         `toml:"submitted_by"`
	Risk            string         `toml:"risk"`
	Unit            string         `toml:"unit"`
	Description     string         `toml:"description"`
	AssignedAnalyst string         `toml:"assigned_analyst"`
	Notes           string         `toml:"notes"`
	Playbook        []string       `toml:"playbook"`
	Priority        int            `toml:"priority"`
	Analysis        *SeedAnalysis  `toml:"analysis"`
	Evidence        []SeedEvidence `toml:"evidence"`
}

// SeedAnalysis is the analysis result of a seed incident
type SeedAnalysis struct {
	Status         string   `toml:"status"`
	ThreatType     string   `toml:"threat_type"`
	Confidence     int      `toml:"confidence"`
	Indicators     []string `toml:"indicators"`
	Recommendation string   `toml:"recommendation"`
}

// SeedEvidence is an evidence item of a seed incident
type SeedEvidence struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	URL  string `toml:"url"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	if err := types.ThreatCategory(c.Name).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(CategoryKey, c.Name))
	}
	return nil
}

// Validate checks if the SeedIncident is valid
func (s *SeedIncident) Validate() error {
	id := types.IncidentID(s.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidIncident, err.Error(), goerr.V(IncidentIDKey, s.ID))
	}
	if err := types.ThreatCategory(s.Category).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidIncident, err.Error(), goerr.V(IncidentIDKey, s.ID))
	}
	if s.Status != "" && !types.IncidentStatus(s.Status).IsValid() {
		return goerr.Wrap(ErrInvalidIncident, "unknown status", goerr.V(IncidentIDKey, s.ID), goerr.V("status", s.Status))
	}
	if !types.Severity(s.Risk).IsValid() {
		return goerr.Wrap(ErrInvalidIncident, "unknown risk", goerr.V(IncidentIDKey, s.ID), goerr.V("risk", s.Risk))
	}
	if _, err := time.Parse(model.DateLayout, s.Date); err != nil {
		return goerr.Wrap(ErrInvalidIncident, "invalid date", goerr.V(IncidentIDKey, s.ID), goerr.V("date", s.Date))
	}
	if s.Time != "" {
		if _, err := time.Parse(model.TimeLayout, s.Time); err != nil {
			return goerr.Wrap(ErrInvalidIncident, "invalid time", goerr.V(IncidentIDKey, s.ID), goerr.V("time", s.Time))
		}
	}
	if s.Analysis != nil && (s.Analysis.Confidence < 0 || s.Analysis.Confidence > 100) {
		return goerr.Wrap(ErrInvalidIncident, "confidence must be between 0 and 100",
			goerr.V(IncidentIDKey, s.ID), goerr.V("confidence", s.Analysis.Confidence))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	categories := make(map[string]bool)
	for _, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return err
		}
		if categories[cat.Name] {
			return goerr.Wrap(ErrDuplicateCategory, "category defined twice", goerr.V(CategoryKey, cat.Name))
		}
		categories[cat.Name] = true
	}

	ids := make(map[string]bool)
	for i, inc := range a.Incidents {
		if err := inc.Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed incident", goerr.V(IncidentIndexKey, i))
		}
		if ids[inc.ID] {
			return goerr.Wrap(ErrDuplicateIncident, "incident defined twice", goerr.V(IncidentIDKey, inc.ID))
		}
		ids[inc.ID] = true
	}

	return nil
}

// Playbooks returns the playbook of each configured category
func (a *AppConfig) Playbooks() map[types.ThreatCategory][]string {
	playbooks := make(map[types.ThreatCategory][]string, len(a.Categories))
	for _, cat := range a.Categories {
		playbooks[types.ThreatCategory(cat.Name)] = cat.Playbook
	}
	return playbooks
}

// SeedIncidents converts the configured incidents to domain models. A seed
// without priority gets the rank of its severity, and its creation time is
// taken from its date and time.
func (a *AppConfig) SeedIncidents() []*model.Incident {
	incidents := make([]*model.Incident, len(a.Incidents))
	for i, s := range a.Incidents {
		severity := types.Severity(s.Risk)
		x := &model.Incident{
			ID:              types.IncidentID(s.ID),
			Category:        types.ThreatCategory(s.Category),
			Status:          types.IncidentStatus(s.Status).Normalize(),
			Severity:        severity,
			Date:            s.Date,
			Time:            s.Time,
			SubmittedBy:     s.SubmittedBy,
			Unit:            s.Unit,
			Description:     s.Description,
			AssignedAnalyst: s.AssignedAnalyst,
			Notes:           s.Notes,
			Playbook:        s.Playbook,
			Priority:        s.Priority,
		}
		if x.Priority == 0 {
			x.Priority = severity.Rank()
		}
		if t, err := time.Parse(model.DateLayout+" "+model.TimeLayout, s.Date+" "+s.Time); err == nil {
			x.CreatedAt = t
		} else if t, err := time.Parse(model.DateLayout, s.Date); err == nil {
			x.CreatedAt = t
		}
		if s.Analysis != nil {
			x.AnalysisResult = &model.AnalysisResult{
				Status:         s.Analysis.Status,
				ThreatType:     s.Analysis.ThreatType,
				Confidence:     s.Analysis.Confidence,
				Indicators:     s.Analysis.Indicators,
				Recommendation: s.Analysis.Recommendation,
			}
		}
		for _, e := range s.Evidence {
			x.Evidence = append(x.Evidence, model.Evidence{Name: e.Name, Type: e.Type, URL: e.URL})
		}
		incidents[i] = x
	}
	return incidents
}

// ParseAppConfiguration parses and validates a TOML configuration
func ParseAppConfiguration(data []byte) (*AppConfig, error) {
	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V("error", err.Error()))
	}
	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed")
	}
	return &config, nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	config, err := ParseAppConfiguration(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load config file", goerr.V(ConfigPathKey, path))
	}
	return config, nil
}

// DefaultAppConfiguration returns the built-in playbooks and demo incidents
func DefaultAppConfiguration() *AppConfig {
	config, err := ParseAppConfiguration(defaultAppConfig)
	if err != nil {
		panic("embedded app config is invalid: " + err.Error())
	}
	return config
}

// App holds CLI flags selecting the application configuration
type App struct {
	path   string
	noSeed bool
}

// Flags returns CLI flags for application configuration
func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML file with category playbooks and seed incidents (built-in demo data if omitted)",
			Category:    "Application",
			Sources:     cli.EnvVars("CYBERPORTAL_CONFIG"),
			Destination: &x.path,
		},
		&cli.BoolFlag{
			Name:        "no-seed",
			Usage:       "Do not load seed incidents at startup",
			Category:    "Application",
			Sources:     cli.EnvVars("CYBERPORTAL_NO_SEED"),
			Destination: &x.noSeed,
		},
	}
}

func (x App) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
		slog.Bool("no_seed", x.noSeed),
	)
}

// Configure loads the configured file, or the built-in configuration when no
// path is set. Seed incidents are dropped when --no-seed is given.
func (x *App) Configure() (*AppConfig, error) {
	var cfg *AppConfig
	if x.path == "" {
		cfg = DefaultAppConfiguration()
	} else {
		loaded, err := LoadAppConfiguration(x.path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if x.noSeed {
		cfg.Incidents = nil
	}
	return cfg, nil
}
