package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spboyer/simarchive/internal/projectconfig"
	"github.com/spboyer/simarchive/internal/webapi"
)

var version = "dev"

// logLevel drives the handlers built by commands; --debug lowers it.
var logLevel = new(slog.LevelVar)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simarchive",
		Short: "simarchive - archive Gatling reports produced by a build",
		Long: `simarchive archives the Gatling reports produced during a build.

It finds report directories written since the build started, copies them into
the build's private archive, parses each report's global statistics and keeps
a per-build history of the results.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
			logLevel.Set(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newArchiveCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newBundleCommand())

	return cmd
}

func execute() error {
	webapi.Version = version
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadConfig reads .simarchive.yaml from the working directory or a parent.
func loadConfig() (*projectconfig.ProjectConfig, error) {
	return projectconfig.Load(".")
}

// historyDir returns the --history-dir flag value, or the configured
// history directory.
func historyDir(flag string, cfg *projectconfig.ProjectConfig) string {
	if flag != "" {
		return flag
	}
	return cfg.Resolve(cfg.Paths.History)
}
