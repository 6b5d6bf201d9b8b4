package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fieldops/internal/config"
	"fieldops/internal/logging"
	"fieldops/internal/remote"
	"fieldops/internal/store"
	fieldsync "fieldops/internal/sync"
	"fieldops/internal/types"
)

var (
	// Global flags
	configPath string
	stateDir   string
	verbose    bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fieldops",
	Short: "fieldops - offline-first client for the field-operations dashboard",
	Long: `fieldops keeps a locally persisted view of promoters, activities, and
notifications consistent with the remote activity store.

Creates go to the remote store (the source of truth for activity identity)
and are followed by a full refresh; edits apply locally until the backend
gains an update endpoint. Visibility is role-scoped: admins see everything,
field promoters see only their own activities.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.Init(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// app bundles everything a command needs after bootstrap.
type app struct {
	cfg     config.Config
	store   *store.Store
	journal *store.Journal
	engine  *fieldsync.Engine
}

// openApp loads config, opens the local store and journal, and wires the
// sync engine. The journal is best-effort: failure to open it degrades to
// no history, never to a dead CLI.
func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}

	st, err := store.Open(cfg.StateDir, defaultDataset(), logging.Named(logging.SubsystemStore))
	if err != nil {
		return nil, err
	}

	journal, err := store.OpenJournal(filepath.Join(cfg.StateDir, "journal.db"))
	if err != nil {
		logging.Named(logging.SubsystemStore).Warn("journal unavailable", zap.Error(err))
		journal = nil
	}

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.TimeoutDuration())
	engine := fieldsync.NewEngine(client, st, fieldsync.Options{
		Journal:          journal,
		Logger:           logging.Named(logging.SubsystemSync),
		FallbackAssignee: cfg.Sync.FallbackAssignee,
		FallbackAdmin:    cfg.Sync.FallbackAdmin,
	})

	return &app{cfg: cfg, store: st, journal: journal, engine: engine}, nil
}

func (a *app) close() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
	_ = a.store.Close()
}

// session returns the persisted identity or an error telling the user to log in.
func (a *app) session() (types.Session, error) {
	s := a.store.Session()
	if !s.Active() {
		return types.Session{}, fmt.Errorf("not logged in; run `fieldops login <promoter-id>` first")
	}
	return s, nil
}

// defaultDataset is what a fresh (or corrupt) state directory starts from.
func defaultDataset() store.Defaults {
	return store.Defaults{
		Promoters: []types.Promoter{
			{ID: "admin", Name: "Administrator", Role: types.RoleAdmin},
		},
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "override the local state directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
