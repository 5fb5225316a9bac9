package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zenbook-app/zenbook/internal/config"
	"github.com/zenbook-app/zenbook/internal/gate"
	"github.com/zenbook-app/zenbook/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage zenbook configuration.

Config file location: ~/.zenbook/config.yaml

Subcommands:
  show    show the current configuration
  init    create the default config file
  set     change a setting
  path    print the config file path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Long: `Show the configuration as written in the config file.

${VAR} references are shown unexpanded; the environment section lists
the values they resolve to. Defaults are shown when no file exists.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the default config file",
	Long: `Create the default config file at ~/.zenbook/config.yaml.

Fails when the file already exists. Use --force to overwrite it.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting.

Supported keys:
  store.backend        chapter store (auto, remote, local)
  store.remote.url     remote project URL
  store.remote.table   remote chapter table
  store.local.path     local database path
  reader.format        default read format (text, markdown, html, json)
  reader.width         wrap column for text output
  reader.color         ANSI styling (auto, always, never)
  admin.pin            4-digit admin PIN
  logging.level        log level (none, normal, debug)

Examples:
  zenbook config set store.backend local
  zenbook config set reader.width 60`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		loader, err := newLoader()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
	},
}

var configForce bool

// configKeys lists the keys accepted by config set.
var configKeys = []string{
	"store.backend",
	"store.remote.url",
	"store.remote.table",
	"store.local.path",
	"reader.format",
	"reader.width",
	"reader.color",
	"admin.pin",
	"logging.level",
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("failed to initialise config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	if loader.Exists() {
		fmt.Fprintf(out, "Config file: %s\n\n", loader.ConfigPath())
	} else {
		fmt.Fprintf(out, "Config file: (defaults)\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to print config: %w", err)
	}
	fmt.Fprintln(out, string(data))

	fmt.Fprintf(out, "Local database: %s\n\n", loader.DataPath(cfg))

	fmt.Fprintln(out, "Environment:")
	writeEnvTable(out)
	return nil
}

func writeEnvTable(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	envVars := []struct {
		key   string
		desc  string
		value string
	}{
		{"SUPABASE_URL", "remote project URL", os.Getenv("SUPABASE_URL")},
		{"SUPABASE_ANON_KEY", "remote API key", maskSecret(os.Getenv("SUPABASE_ANON_KEY"))},
		{PINEnv, "admin PIN", maskSecret(os.Getenv(PINEnv))},
	}

	for _, ev := range envVars {
		status := "(not set)"
		if ev.value != "" {
			status = ev.value
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", ev.key, ev.desc, status)
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("failed to initialise config loader: %w", err)
	}

	if loader.Exists() && !configForce {
		return fmt.Errorf("config file already exists: %s\nuse --force to overwrite it", loader.ConfigPath())
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file created: %s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("failed to initialise config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config updated: %s = %s\n", key, value)
	return nil
}

// setConfigValue validates value and stores it under key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "store.backend":
		valid := []string{config.BackendAuto, config.BackendRemote, config.BackendLocal}
		if !contains(valid, value) {
			return fmt.Errorf("invalid store backend: %s (supported: %s)", value, strings.Join(valid, ", "))
		}
		cfg.Store.Backend = value

	case "store.remote.url":
		cfg.Store.Remote.URL = value

	case "store.remote.table":
		if value == "" {
			return fmt.Errorf("table name cannot be empty")
		}
		cfg.Store.Remote.Table = value

	case "store.local.path":
		cfg.Store.Local.Path = value

	case "reader.format":
		if _, err := render.Get(value); err != nil {
			return fmt.Errorf("%w (supported: %s)", err, strings.Join(render.List(), ", "))
		}
		cfg.Reader.Format = value

	case "reader.width":
		width, err := strconv.Atoi(value)
		if err != nil || width < 0 {
			return fmt.Errorf("invalid width: %s", value)
		}
		cfg.Reader.Width = width

	case "reader.color":
		valid := []string{"auto", "always", "never"}
		if !contains(valid, value) {
			return fmt.Errorf("invalid color mode: %s (supported: %s)", value, strings.Join(valid, ", "))
		}
		cfg.Reader.Color = value

	case "admin.pin":
		if err := gate.Validate(value); err != nil {
			return err
		}
		cfg.Admin.PIN = value

	case "logging.level":
		valid := []string{"none", "normal", "debug"}
		if !contains(valid, value) {
			return fmt.Errorf("invalid logging level: %s (supported: %s)", value, strings.Join(valid, ", "))
		}
		cfg.Logging.Level = value

	default:
		return fmt.Errorf("unknown config key: %s\nsupported keys: %s", key, strings.Join(configKeys, ", "))
	}
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
