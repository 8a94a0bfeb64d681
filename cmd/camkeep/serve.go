package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"time"

	"camkeep-hq/camkeep/pkg/cli"
	"camkeep-hq/camkeep/pkg/config"
	"camkeep-hq/camkeep/pkg/retention"
	"camkeep-hq/camkeep/pkg/server"
	"camkeep-hq/camkeep/pkg/telemetry/health"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveFlags struct {
	listenAddress string
	runNow        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run retention on a schedule",
	Long: `Run retention on the configured cron schedule and serve metrics and health
endpoints until SIGINT or SIGTERM.

The configuration file is reloaded when it changes or on SIGHUP; budgets and
targets take effect on the next run. A change of schedule or listen address
requires a restart.

Endpoints:
  /metrics   Prometheus metrics
  /healthz   liveness
  /readyz    readiness (archive root readable, last run not failed,
             scheduler running)
  /version   build information

Examples:
  camkeep serve --config /etc/camkeep/camkeep.yaml
  camkeep serve --listen 0.0.0.0:9109 --run-now`,
	RunE: serveRetention,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().BoolVar(&serveFlags.runNow, "run-now", false, "run once immediately after starting")
}

func serveRetention(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	listen := cfg.Server.ListenAddress
	if serveFlags.listenAddress != "" {
		listen = serveFlags.listenAddress
	}

	tel, err := newTelemetry(&cfg.Telemetry)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer tel.shutdown()

	store := retention.OpenHistory(&cfg.History)
	if store != nil {
		defer store.Close()
	}

	runner := retention.NewRunner(config.GetConfig, retention.RunnerOptions{
		Metrics: tel.metrics,
		History: store,
		Tracer:  tel.tracer,
	})
	scheduler := retention.NewScheduler(cfg.Retention.Schedule, runner.Run)

	checker := health.New(5 * time.Second)
	checker.RegisterCheck("archive_root", func(ctx context.Context) error {
		return health.DirectoryCheck(config.MustGetConfig().Archive.Root)(ctx)
	})
	checker.RegisterCheck("last_run", health.LastRunCheck(runner, 0))
	if cfg.Retention.Schedule != "" {
		checker.RegisterCheck("scheduler", func(ctx context.Context) error {
			if !scheduler.IsRunning() {
				return errors.New("scheduler is not running")
			}
			return nil
		})
	}
	slog.Debug("readiness checks registered", "checks", checker.ListChecks())

	mux := http.NewServeMux()
	if tel.metrics.Enabled() {
		mux.Handle(cfg.Telemetry.Metrics.Path, tel.metrics.Handler())
	}
	health.Mount(mux, checker, Version, GitCommit, BuildDate)

	serverCfg := cfg.Server
	serverCfg.ListenAddress = listen
	srv := server.NewServer(&serverCfg, mux)
	if err := srv.Listen(); err != nil {
		return cli.NewCommandError("serve", err)
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(ctx)
	})

	g.Go(func() error {
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		if next := scheduler.NextRun(); next != nil {
			slog.Info("next scheduled run", "at", next.Format(time.RFC3339))
		}
		<-ctx.Done()
		scheduler.Stop()
		return nil
	})

	g.Go(func() error {
		return watchConfig(ctx, cfgFile, cfg)
	})

	if serveFlags.runNow {
		g.Go(func() error {
			if _, err := runner.Run(ctx); err != nil {
				slog.Warn("initial run did not complete", "error", err)
			}
			return nil
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ camkeep %s serving on %s\n", Version, srv.Addr())
	if err := g.Wait(); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ camkeep stopped")
	return nil
}

// watchConfig reloads the process-wide configuration when the file changes
// or SIGHUP arrives. Settings read only at startup are reported, not applied.
func watchConfig(ctx context.Context, path string, started *config.Config) error {
	reload := func() error {
		if err := config.ReloadConfig(path); err != nil {
			return err
		}
		current := config.GetConfig()
		if current.Retention.Schedule != started.Retention.Schedule {
			slog.Warn("retention schedule changed, restart to apply",
				"running", started.Retention.Schedule,
				"configured", current.Retention.Schedule,
			)
		}
		if current.Server.ListenAddress != started.Server.ListenAddress {
			slog.Warn("listen address changed, restart to apply",
				"running", started.Server.ListenAddress,
				"configured", current.Server.ListenAddress,
			)
		}
		return setupLogging(&current.Telemetry.Logging)
	}

	hup := cli.ReloadSignals()
	defer signal.Stop(hup)

	watcher, err := config.NewWatcher(path, 0)
	if err != nil {
		slog.Warn("configuration file is not watched, use SIGHUP to reload", "error", err)
	} else {
		go func() {
			if err := watcher.Watch(ctx, reload); err != nil {
				slog.Error("configuration watcher stopped", "error", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			if err := reload(); err != nil {
				slog.Error("configuration reload failed, keeping previous configuration", "error", err)
				continue
			}
			slog.Info("configuration reloaded", "path", path)
		}
	}
}
