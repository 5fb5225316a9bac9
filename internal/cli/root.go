// Package cli implements the zenbook command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zenbook-app/zenbook/internal/config"
	"github.com/zenbook-app/zenbook/internal/store"
	"github.com/zenbook-app/zenbook/internal/store/local"
	"github.com/zenbook-app/zenbook/internal/store/remote"
)

var version = "dev"

var (
	cfgFile string
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "zenbook",
	Short: "Read and author the chapters of a mindfulness book",
	Long: `zenbook renders book chapters written in a small line-oriented markup
and manages the chapter collection.

Chapters are stored in a remote table when SUPABASE_URL and
SUPABASE_ANON_KEY are set, and in a local database otherwise. A failing
remote falls back to the local database.

Examples:
  zenbook read chapter.zen
  zenbook read admin_1700000000000 --format html
  zenbook chapter list
  zenbook chapter add morning.yaml --pin 1234
  zenbook import notes.md -o notes.zen`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "zenbook version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.zenbook/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress log output")

	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app carries what most commands need: the loaded configuration, its loader
// and the logger built from it.
type app struct {
	loader *config.Loader
	cfg    *config.Config
	log    *zap.Logger
}

func newLoader() (*config.Loader, error) {
	if cfgFile != "" {
		return config.NewLoaderWithPath(cfgFile), nil
	}
	return config.NewLoader()
}

func loadApp() (*app, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise config loader: %w", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	switch {
	case quiet:
		cfg.Logging.Level = "none"
	case verbose:
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := cfg.Logging.Prepare()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare logger: %w", err)
	}

	log.Debug("Configuration loaded", zap.String("path", loader.ConfigPath()), zap.Bool("exists", loader.Exists()))
	return &app{loader: loader, cfg: cfg, log: log}, nil
}

// openStore opens the chapter store selected by store.backend. The local
// database is always opened so remote failures have somewhere to go.
func (a *app) openStore() (store.Store, error) {
	dataPath := a.loader.DataPath(a.cfg)
	localStore, err := local.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	useRemote := a.cfg.Store.Backend == config.BackendRemote ||
		(a.cfg.Store.Backend == config.BackendAuto && a.cfg.RemoteConfigured())
	if !useRemote {
		a.log.Debug("Using local chapter store", zap.String("path", dataPath))
		return store.NewFallback(nil, localStore, a.log), nil
	}

	rc := a.cfg.Store.Remote
	remoteStore, err := remote.New(remote.Config{
		URL:     rc.URL,
		APIKey:  rc.APIKey,
		Table:   rc.Table,
		Timeout: rc.Timeout(),
	})
	if err != nil {
		localStore.Close()
		return nil, fmt.Errorf("failed to configure remote store: %w", err)
	}

	a.log.Debug("Using remote chapter store", zap.String("url", rc.URL), zap.String("table", rc.Table))
	return store.NewFallback(remoteStore, localStore, a.log), nil
}

func (a *app) close() {
	_ = a.log.Sync()
}
