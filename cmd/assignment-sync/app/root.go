// Package app builds the assignment-sync command tree.
package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/internal/models"
	"github.com/akn101/assignmentsync/internal/pipeline"
	"github.com/akn101/assignmentsync/pkg/config"
	"github.com/akn101/assignmentsync/pkg/logger"
)

type flags struct {
	incremental  bool
	statuses     []string
	classIDs     []string
	dueBefore    string
	dueAfter     string
	incomplete   bool
	overdue      bool
	refreshToken bool
	detail       string
	exportDir    string
}

// NewRootCmd assembles the CLI. Help exits zero without touching the
// network; all other validation failures surface before the first request.
func NewRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "assignment-sync",
		Short: "Sync class assignments to local exports and a Notion database",
		Long: `assignment-sync pulls assignment records from the education platform API,
normalizes them, applies the requested filters, writes JSON/CSV/PDF exports
(plus per-year and per-month partitions), and upserts one Notion page per
assignment. Sync state lives in a local JSON file; incremental runs skip
ids already recorded there.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().BoolVar(&f.incremental, "incremental", false, "only report/upload assignments not previously seen (default: full)")
	cmd.Flags().StringArrayVar(&f.statuses, "status", nil, "keep only the given status (repeatable)")
	cmd.Flags().StringArrayVar(&f.classIDs, "class", nil, "keep only the given class id (repeatable)")
	cmd.Flags().StringVar(&f.dueBefore, "due-before", "", "keep only items due before this date (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.dueAfter, "due-after", "", "keep only items due after this date (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.incomplete, "incomplete", false, "drop items that are fully turned in with at least one submission")
	cmd.Flags().BoolVar(&f.overdue, "overdue", false, "keep only items with a due date in the past")
	cmd.Flags().BoolVar(&f.refreshToken, "refresh-token", false, "force a token refresh before syncing")
	cmd.Flags().StringVar(&f.detail, "detail", "", "dump one expanded assignment as JSON and exit (CLASS_ID:ASSIGNMENT_ID)")
	cmd.Flags().StringVar(&f.exportDir, "export-dir", "", "override the export directory")

	return cmd
}

func run(cmd *cobra.Command, f *flags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.exportDir != "" {
		cfg.Export.Dir = f.exportDir
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	p := pipeline.New(cfg, logr)
	ctx := cmd.Context()

	if f.detail != "" {
		classID, assignmentID, err := splitDetailArg(f.detail)
		if err != nil {
			return err
		}
		out, err := p.DumpDetail(ctx, classID, assignmentID, f.refreshToken)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	mode := models.ModeFull
	if f.incremental {
		mode = models.ModeIncremental
	}

	summary, err := p.Run(ctx, pipeline.Options{
		Mode:         mode,
		Statuses:     f.statuses,
		ClassIDs:     f.classIDs,
		DueBefore:    f.dueBefore,
		DueAfter:     f.dueAfter,
		Incomplete:   f.incomplete,
		Overdue:      f.overdue,
		ForceRefresh: f.refreshToken,
	})
	if err != nil {
		logr.Error("sync failed", zap.Error(err))
		return err
	}

	logr.Info("sync finished",
		zap.String("mode", summary.Mode),
		zap.Int("fetched", summary.Fetched),
		zap.Int("exported", summary.Filtered),
		zap.Int("uploaded", summary.Uploaded),
		zap.Int("upload_failures", summary.Failed),
		zap.Duration("duration", summary.Duration))
	return nil
}

func splitDetailArg(arg string) (string, string, error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("--detail expects CLASS_ID:ASSIGNMENT_ID, got %q", arg)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
