// Package cmd implements the simplepipe CLI commands.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/plexsphere/simplepipe/internal/config"
)

var (
	cfgFile    string
	envFile    string
	logLevel   string
	gatewayURL string
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo sets the version info from build-time ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("simplepipe version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "simplepipe",
	Short: "simplepipe pushes metric files to a Prometheus Pushgateway",
	Long: "simplepipe reads metric definitions from a JSON or YAML file, builds a fresh\n" +
		"Prometheus registry from them and pushes it to a Pushgateway under a job name.\n" +
		"Each push replaces the metrics previously stored for that job.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, ".env file path (skipped when missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error; overrides config)")
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway", "", "Pushgateway URL (overrides config)")

	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("simplepipe version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the layered configuration with CLI flag overrides.
func loadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{
		ConfigFile: cfgFile,
		EnvFile:    envFile,
		LogLevel:   logLevel,
		GatewayURL: gatewayURL,
	})
}

func setupLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
