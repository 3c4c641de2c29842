package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/cli/config"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/usecase"
	"github.com/secmon-lab/cyberportal/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

var severityColors = map[types.Severity]*color.Color{
	types.SeverityCritical: color.New(color.FgRed, color.Bold),
	types.SeverityHigh:     color.New(color.FgYellow),
	types.SeverityMedium:   color.New(color.FgCyan),
	types.SeverityLow:      color.New(color.FgGreen),
}

type listFlags struct {
	search     string
	severity   string
	status     string
	assignedTo string
	unit       string
	dateFrom   string
	dateTo     string
	sortBy     string
	sortOrder  string
}

func (x *listFlags) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Case-insensitive search over ID, category, unit and reporter",
			Category:    "Filter",
			Destination: &x.search,
		},
		&cli.StringFlag{
			Name:        "severity",
			Usage:       "Severity filter (Critical, High, Medium, Low or all)",
			Category:    "Filter",
			Value:       model.FilterAll,
			Destination: &x.severity,
		},
		&cli.StringFlag{
			Name:        "status",
			Usage:       "Status filter (Pending, Under Review, Investigating, Resolved or all)",
			Category:    "Filter",
			Value:       model.FilterAll,
			Destination: &x.status,
		},
		&cli.StringFlag{
			Name:        "assigned-to",
			Usage:       "Analyst filter (all, unassigned or part of an analyst name)",
			Category:    "Filter",
			Value:       model.FilterAll,
			Destination: &x.assignedTo,
		},
		&cli.StringFlag{
			Name:        "unit",
			Usage:       "Reporting unit filter",
			Category:    "Filter",
			Value:       model.FilterAll,
			Destination: &x.unit,
		},
		&cli.StringFlag{
			Name:        "from",
			Usage:       "Earliest report date (YYYY-MM-DD, inclusive)",
			Category:    "Filter",
			Destination: &x.dateFrom,
		},
		&cli.StringFlag{
			Name:        "to",
			Usage:       "Latest report date (YYYY-MM-DD, inclusive)",
			Category:    "Filter",
			Destination: &x.dateTo,
		},
		&cli.StringFlag{
			Name:        "sort-by",
			Usage:       "Sort key (priority, aiScore, date, severity)",
			Category:    "Filter",
			Value:       string(types.SortKeyPriority),
			Destination: &x.sortBy,
		},
		&cli.StringFlag{
			Name:        "sort-order",
			Usage:       "Sort order (asc, desc)",
			Category:    "Filter",
			Value:       string(types.SortOrderDesc),
			Destination: &x.sortOrder,
		},
	}
}

// Query converts the flags into an incident query
func (x *listFlags) Query() (model.IncidentQuery, error) {
	q := model.IncidentQuery{
		Search:     x.search,
		Severity:   x.severity,
		Status:     x.status,
		AssignedTo: x.assignedTo,
		Unit:       x.unit,
		DateFrom:   x.dateFrom,
		DateTo:     x.dateTo,
	}

	if q.Severity != "" && q.Severity != model.FilterAll {
		sev, err := types.ParseSeverity(q.Severity)
		if err != nil {
			return q, goerr.Wrap(err, "invalid --severity", goerr.V("severity", x.severity))
		}
		q.Severity = sev.String()
	}

	key, err := types.ParseSortKey(x.sortBy)
	if err != nil {
		return q, goerr.Wrap(err, "invalid --sort-by", goerr.V("sort_by", x.sortBy))
	}
	q.SortBy = key

	order, err := types.ParseSortOrder(x.sortOrder)
	if err != nil {
		return q, goerr.Wrap(err, "invalid --sort-order", goerr.V("sort_order", x.sortOrder))
	}
	q.SortOrder = order

	return q, nil
}

func cmdList() *cli.Command {
	var filter listFlags
	var appCfg config.App
	var repoCfg config.Repository

	flags := filter.Flags()
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Print the analyst incident queue",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			q, err := filter.Query()
			if err != nil {
				return err
			}

			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load app configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			if repoCfg.Backend() != config.BackendFirestore {
				if err := importSeeds(ctx, repo, app); err != nil {
					return err
				}
			}

			uc := usecase.New(repo, usecase.WithPlaybooks(app.Playbooks()))
			incidents, stats, err := uc.Incident.ListForAnalyst(ctx, q)
			if err != nil {
				return err
			}

			printIncidents(c.Root().Writer, incidents, stats)
			return nil
		},
	}
}

func printIncidents(w io.Writer, incidents []*model.Incident, stats model.AnalystStats) {
	fmt.Fprintf(w, "Critical: %d  High: %d  Today: %d  Active Users: %d\n\n",
		stats.Critical, stats.High, stats.Today, stats.ActiveUsers)

	if len(incidents) == 0 {
		fmt.Fprintln(w, "No incidents match the filter")
		return
	}

	for _, x := range incidents {
		severity := x.Severity.String()
		if c, ok := severityColors[x.Severity]; ok {
			severity = c.Sprint(severity)
		}

		analyst := x.AssignedAnalyst
		if analyst == "" {
			analyst = model.UnassignedAnalyst
		}

		score := "-"
		if x.AnalysisResult != nil {
			score = fmt.Sprintf("%d%%", x.AnalysisResult.Confidence)
		}

		fmt.Fprintf(w, "%-14s %-10s %-14s %s\n", x.ID, severity, x.Status, x.Category)
		fmt.Fprintf(w, "  unit: %s  analyst: %s  ai: %s  reported: %s %s\n",
			x.Unit, analyst, score, x.Date, x.Time)
	}
}
