package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spboyer/simarchive/internal/archive"
	"github.com/spboyer/simarchive/internal/history"
	"github.com/spboyer/simarchive/internal/models"
	"github.com/spboyer/simarchive/internal/orchestration"
)

type archiveOptions struct {
	workspace   string
	buildID     string
	buildRoot   string
	started     string
	enabled     string
	historyDir  string
	onCollision string
}

func newArchiveCommand() *cobra.Command {
	var opts archiveOptions

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive the Gatling reports produced by a build",
		Long: `Archive the Gatling reports produced by a build.

Every directory under the workspace holding a js/global_stats.json file is a
report. Reports modified after --started are copied to
<build-root>/simulations/<report>, their statistics are parsed and one summary
record per report is appended to the build's history.

Exit codes:
  0  reports archived, or nothing to archive
  1  archiving failed
  2  usage or configuration error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runArchive(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.workspace, "workspace", "", "Build workspace to search for reports (default: paths.workspace)")
	f.StringVar(&opts.buildID, "build-id", "", "Identifier of the build (required)")
	f.StringVar(&opts.buildRoot, "build-root", "", "Build storage directory (default: <paths.builds>/<build-id>)")
	f.StringVar(&opts.started, "started", "", "Build start time, RFC 3339 or Unix milliseconds (required)")
	f.StringVar(&opts.enabled, "enabled", "", "Simulation tracking switch: true or false (default: archive.enabled)")
	f.StringVar(&opts.historyDir, "history-dir", "", "History directory (default: paths.history)")
	f.StringVar(&opts.onCollision, "on-collision", "", "What to do when a report is already archived: fail or skip (default: archive.on_collision)")
	_ = cmd.MarkFlagRequired("build-id")
	_ = cmd.MarkFlagRequired("started")

	return cmd
}

func runArchive(cmd *cobra.Command, opts archiveOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	enablement := cfg.Enablement()
	if cmd.Flags().Changed("enabled") {
		if enablement, err = models.ParseEnablement(opts.enabled); err != nil {
			return err
		}
	}

	started, err := orchestration.ParseStartTime(opts.started)
	if err != nil {
		return err
	}
	if err := history.ValidateBuildID(opts.buildID); err != nil {
		return err
	}

	onCollision := cfg.Archive.OnCollision
	if opts.onCollision != "" {
		onCollision = opts.onCollision
	}
	policy, err := archive.ParseCollisionPolicy(onCollision)
	if err != nil {
		return err
	}

	workspace := opts.workspace
	if workspace == "" {
		workspace = cfg.Resolve(cfg.Paths.Workspace)
	}
	buildRoot := opts.buildRoot
	if buildRoot == "" {
		buildRoot = cfg.BuildRoot(opts.buildID)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))
	rc := &orchestration.BuildContext{
		ID:           opts.buildID,
		WorkspaceDir: workspace,
		Started:      started,
		Log:          logger,
		Root:         buildRoot,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	histDir := historyDir(opts.historyDir, cfg)
	recorder := history.NewRecorder(history.NewFileStore(histDir))
	archiver := orchestration.NewArchiver(recorder,
		orchestration.WithWriter(archive.NewWriter(archive.WithCollisionPolicy(policy))),
		orchestration.WithExcludes(cfg.Resolve(cfg.Paths.Builds), histDir))

	res, err := archiver.Run(ctx, rc, enablement)
	if err != nil {
		return &ArchiveFailureError{
			Message: fmt.Sprintf("archiving failed: %v", err),
			Err:     err,
		}
	}

	for _, r := range res.Records {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Simulation, r.ArchiveDir)
	}
	return nil
}
