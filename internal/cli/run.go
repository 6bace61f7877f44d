package cli

import (
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/the-momentum/open-wearables-sync/internal/connectivity"
	"github.com/the-momentum/open-wearables-sync/internal/workers"
)

// NewRunCommand creates the daemon command: background workers plus an
// initial incremental sync.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var skipInitialSync bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the engine as a daemon",
		Long: `Run the sync engine until interrupted.

Starts the outbox sweeper and the connectivity monitor, performs one
incremental sync on startup, and then reacts to connectivity changes and
sweep ticks. Stop with SIGINT or SIGTERM; an in-flight sync is cancelled
cooperatively and its progress survives for the next start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			return runDaemon(a, skipInitialSync)
		},
	}

	cmd.Flags().BoolVar(&skipInitialSync, "no-initial-sync", false, "do not trigger a sync on startup")

	return cmd
}

func runDaemon(a *app, skipInitialSync bool) error {
	monitor := connectivity.NewMonitor(
		connectivity.DialProber{Address: probeAddress(a.cfg.Remote.BaseURL)},
		a.services.Orchestrator,
		a.services.Trigger,
		a.services.Sweeper,
		a.cfg.Workers.ProbeInterval,
		a.cfg.Workers.SettleDelay,
		a.logger,
	)

	ws := workers.NewWorkers(a.services.Sweeper, monitor)
	ws.Run()
	defer ws.Stop()

	if !skipInitialSync {
		a.services.Trigger.Trigger()
	}

	a.logger.Info().Msg("engine running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info().Msg("shutting down...")
	a.services.Trigger.Stop()
	a.services.Orchestrator.Stop()
	return nil
}

// probeAddress derives a host:port dial target from the endpoint base URL.
func probeAddress(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "http" {
		return u.Host + ":80"
	}
	return u.Host + ":443"
}
