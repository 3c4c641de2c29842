package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/cli/config"
	httpctrl "github.com/secmon-lab/cyberportal/pkg/controller/http"
	"github.com/secmon-lab/cyberportal/pkg/service/worker"
	"github.com/secmon-lab/cyberportal/pkg/usecase"
	"github.com/secmon-lab/cyberportal/pkg/utils/logging"
	"github.com/secmon-lab/cyberportal/pkg/utils/safe"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var simulateLatency bool
	var maxUploadSize int64
	var appCfg config.App
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("CYBERPORTAL_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of the portal, used for links in notifications (e.g., https://portal.example.com)",
			Sources:     cli.EnvVars("CYBERPORTAL_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.BoolFlag{
			Name:        "simulate-latency",
			Usage:       "Delay operations like the demo backend (lookup 300ms, update 500ms, list 800ms, submit 2s, analyze 3s)",
			Sources:     cli.EnvVars("CYBERPORTAL_SIMULATE_LATENCY"),
			Destination: &simulateLatency,
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Maximum size in bytes of a multipart report submission",
			Value:       httpctrl.DefaultMaxUploadSize,
			Sources:     cli.EnvVars("CYBERPORTAL_MAX_UPLOAD_SIZE"),
			Destination: &maxUploadSize,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load app configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			if err := importSeeds(ctx, repo, app); err != nil {
				return err
			}

			slackSvc, err := slackCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack")
			}

			ucOpts := []usecase.Option{
				usecase.WithPlaybooks(app.Playbooks()),
				usecase.WithBaseURL(baseURL),
			}
			if simulateLatency {
				ucOpts = append(ucOpts, usecase.WithLatency(usecase.DemoLatency()))
				logging.Default().Info("Simulated latency enabled")
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlackNotification(slackSvc, slackCfg.ChannelID()))
			}
			uc := usecase.New(repo, ucOpts...)

			if slackSvc != nil && slackCfg.DigestInterval() > 0 {
				digest := worker.NewDigestWorker(repo, slackSvc, slackCfg.ChannelID(), slackCfg.DigestInterval())
				if err := digest.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start digest worker")
				}
				defer digest.Stop()
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc.Incident, httpctrl.WithMaxUploadSize(maxUploadSize)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"app", appCfg,
					"repository", repoCfg,
					"slack", slackCfg,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
