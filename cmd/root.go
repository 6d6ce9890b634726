package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/surveyloom-cli/internal/config"
	"github.com/KaramelBytes/surveyloom-cli/internal/logging"
	"github.com/KaramelBytes/surveyloom-cli/internal/store"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "surveyloom",
	Short: "SurveyLoom CLI: aggregate, weight and segment survey exports",
	Long: `SurveyLoom turns survey platform exports (XLSX/CSV) into counted answer tables,
NPS/CSI/TR/ROTI metrics and open comments, optionally raked to demographic
targets and broken down by segment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.surveyloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: error|warn|info|debug (overrides config)")
}

func loadConfig() {
	cfg = nil
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	} else {
		cfg = c
	}

	level := logging.LevelWarn
	if cfg != nil && cfg.LogLevel != "" {
		level = logging.ParseLevel(cfg.LogLevel)
	}
	if logLevel != "" {
		level = logging.ParseLevel(logLevel)
	}
	if debug {
		level = logging.LevelDebug
	}
	logger = logging.NewStderr(level)
	if cfg != nil {
		logger.Debug("config loaded (data_dir=%s, projects_dir=%s)", cfg.DataDir, cfg.ProjectsDir)
	}
}

// requireConfig loads the configuration if OnInitialize failed or was skipped.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func openStore() (*store.Store, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	dir, err := expandHome(c.DataDir)
	if err != nil {
		return nil, err
	}
	return store.New(dir)
}
