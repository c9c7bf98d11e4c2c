package cmd

import (
	"context"
	"fmt"

	"equipment-inventory/core/metrics"
	"equipment-inventory/core/reconcile"
	equipSync "equipment-inventory/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncDryRun  bool
	syncRetries int
)

// syncCmd runs one reconciliation pass from the command line.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the local and remote inventories once",
	Long: `Runs one reconciliation pass between the local and the remote database
and prints the report.

Examples:
  # Show what would change
  sync --dry-run

  # Retry the whole pass up to 5 times when a store is unreachable
  sync --retries 5`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Plan only, write nothing")
	syncCmd.Flags().IntVar(&syncRetries, "retries", 0, "Attempts per pass (default: sync.max_attempts)")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	st, err := openStores(ctx, cfg, l, true)
	if err != nil {
		return err
	}
	defer st.Close()

	publisher := newPublisher(cfg, l)
	defer publisher.Close()

	// The CLI always runs, whatever sync.enabled says for the server.
	syncCfg := cfg.Sync
	syncCfg.Enabled = true
	svc := equipSync.NewService(st.Local, st.Remote, syncCfg, publisher, equipSync.NewMetrics(metrics.NewRegistry()), l)

	attempts := syncRetries
	if attempts <= 0 {
		attempts = syncCfg.MaxAttempts
	}

	out, err := svc.RunWithRetry(ctx, reconcile.Options{DryRun: syncDryRun}, attempts)
	if out != nil {
		printSyncReport(cmd, out)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if out.DryRun {
		l.Info("Dry-run mode: No changes were made.")
	} else if !out.InSync {
		l.Warn("Stores still differ after sync", zap.Int("local_total", out.LocalTotal), zap.Int("remote_total", out.RemoteTotal))
	}
	return nil
}

func printSyncReport(cmd *cobra.Command, out *equipSync.Outcome) {
	w := cmd.OutOrStdout()
	for _, line := range out.ChangeLog {
		fmt.Fprintln(w, line)
	}
	for _, skip := range out.Skipped {
		fmt.Fprintf(w, "[SKIPPED] %s %s: %s\n", skip.Side, skip.Key, skip.Reason)
	}
	fmt.Fprintf(w, "created=%d updated=%d deleted=%d conflicts=%d local=%d remote=%d elapsed=%dms\n",
		out.Created, out.Updated, out.Deleted, out.ConflictsReal, out.LocalTotal, out.RemoteTotal, out.ElapsedMS)
}
