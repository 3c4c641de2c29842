package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cyberportal/pkg/cli"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

func TestRun_ListCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("default configuration", func(t *testing.T) {
		err := cli.Run(ctx, []string{"cyberportal", "--log-level", "error", "list"}, "test")
		gt.NoError(t, err)
	})

	t.Run("filters and sort", func(t *testing.T) {
		err := cli.Run(ctx, []string{
			"cyberportal", "--log-level", "error", "list",
			"--severity", "critical",
			"--assigned-to", "unassigned",
			"--sort-by", "severity",
			"--sort-order", "asc",
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("invalid severity", func(t *testing.T) {
		err := cli.Run(ctx, []string{"cyberportal", "--log-level", "error", "list", "--severity", "Severe"}, "test")
		gt.Error(t, err)
	})

	t.Run("invalid sort key", func(t *testing.T) {
		err := cli.Run(ctx, []string{"cyberportal", "--log-level", "error", "list", "--sort-by", "name"}, "test")
		gt.Error(t, err)
	})

	t.Run("invalid config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.toml")
		gt.NoError(t, os.WriteFile(path, []byte("[[category]]\nname = \"Unknown\"\n"), 0o600))

		err := cli.Run(ctx, []string{"cyberportal", "--log-level", "error", "list", "--config", path}, "test")
		gt.Error(t, err)
	})
}

func TestPrintIncidents(t *testing.T) {
	t.Run("incidents", func(t *testing.T) {
		var buf bytes.Buffer
		cli.PrintIncidents(&buf, []*model.Incident{
			{
				ID:       "INC-2024-001",
				Category: types.ThreatCategoryPhishing,
				Status:   types.IncidentStatusPending,
				Severity: types.SeverityCritical,
				Date:     "2024-01-15",
				Time:     "14:30",
				Unit:     "12 Corps",
				AnalysisResult: &model.AnalysisResult{
					Confidence: 96,
				},
			},
		}, model.AnalystStats{Critical: 1, Today: 1, ActiveUsers: 1})

		out := buf.String()
		gt.B(t, strings.Contains(out, "Critical: 1")).True()
		gt.B(t, strings.Contains(out, "INC-2024-001")).True()
		gt.B(t, strings.Contains(out, "12 Corps")).True()
		gt.B(t, strings.Contains(out, "analyst: Unassigned")).True()
		gt.B(t, strings.Contains(out, "ai: 96%")).True()
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		cli.PrintIncidents(&buf, nil, model.AnalystStats{})
		gt.B(t, strings.Contains(buf.String(), "No incidents match the filter")).True()
	})
}

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("")
	gt.A(t, cfg.Collections).Length(1)
	gt.V(t, cfg.Collections[0].Name).Equal("incidents")
	gt.A(t, cfg.Collections[0].Indexes).Length(1)
	gt.A(t, cfg.Collections[0].Indexes[0].Fields).Length(2)
	gt.V(t, cfg.Collections[0].Indexes[0].Fields[0].Path).Equal("status")
	gt.V(t, cfg.Collections[0].Indexes[0].Fields[1].Path).Equal("created_at")

	prefixed := cli.GetIndexConfig("test")
	gt.V(t, prefixed.Collections[0].Name).Equal("test_incidents")
}
