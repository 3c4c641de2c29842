package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/cli/config"
	"github.com/secmon-lab/cyberportal/pkg/domain/interfaces"
	"github.com/secmon-lab/cyberportal/pkg/utils/logging"
)

// importSeeds loads the seed incidents of the app configuration into repo
func importSeeds(ctx context.Context, repo interfaces.Repository, appCfg *config.AppConfig) error {
	seeds := appCfg.SeedIncidents()
	if len(seeds) == 0 {
		return nil
	}

	if err := repo.Incident().Import(ctx, seeds); err != nil {
		return goerr.Wrap(err, "failed to import seed incidents", goerr.V("count", len(seeds)))
	}

	logging.From(ctx).Info("Seed incidents imported", "count", len(seeds))
	return nil
}
