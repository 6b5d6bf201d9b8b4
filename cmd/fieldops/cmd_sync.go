package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fieldops/internal/logging"
	"fieldops/internal/store"
)

var watchSpec string

// syncCmd runs one full refresh from the remote store.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the local activity collection with the remote listing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		session, err := a.session()
		if err != nil {
			return err
		}
		if err := a.engine.Refresh(cmd.Context(), session); err != nil {
			return err
		}
		fmt.Printf("Synced %d activities\n", len(a.store.Activities()))
		return nil
	},
}

// watchCmd runs the long-lived convergence daemon: the state-directory
// watcher absorbs writes from other local sessions, the optional Redis
// broadcaster relays changes between machines, and a cron schedule keeps
// pulling the remote listing.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the sync daemon (file watcher, change broadcast, scheduled refresh)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		session, err := a.session()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		log := logging.Named(logging.SubsystemWatch)

		watcher, err := store.NewWatcher(a.store, log)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()

		if a.cfg.Redis.Addr != "" {
			broadcaster := store.NewBroadcaster(a.cfg.Redis.Addr, a.cfg.Redis.Channel, a.store, log)
			if err := broadcaster.Start(ctx); err != nil {
				log.Warn("redis broadcast unavailable", zap.Error(err))
			} else {
				defer broadcaster.Stop()
			}
		}

		spec := watchSpec
		if spec == "" {
			spec = a.cfg.Sync.RefreshSpec
		}
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(spec, func() {
			if err := a.engine.Refresh(ctx, session); err != nil {
				log.Warn("scheduled refresh failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("invalid refresh spec %q: %w", spec, err)
		}
		scheduler.Start()
		defer scheduler.Stop()

		// Prime once so the daemon starts from current remote state.
		if err := a.engine.Refresh(ctx, session); err != nil {
			log.Warn("initial refresh failed", zap.Error(err))
		}

		fmt.Printf("Watching %s (refresh %s). Ctrl+C to stop.\n", a.store.Dir(), spec)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchSpec, "every", "", "cron spec for scheduled refresh (default from config)")
}
