package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exportCmd writes a spreadsheet export of the local store.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the local inventory to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, l, err := loadRuntime()
		if err != nil {
			return err
		}
		defer l.Sync()

		if !cfg.Storage.Enabled() {
			return fmt.Errorf("object storage is not configured (storage.endpoint)")
		}

		local, err := openStore(ctx, "local", cfg.Local, l)
		if err != nil {
			return err
		}
		defer local.Close()

		svc, err := newExportService(ctx, cfg, local.store, l)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}

		export, err := svc.Create(ctx)
		if err != nil {
			return err
		}
		l.Info("Export complete", zap.String("key", export.Key), zap.Int("rows", export.Rows))
		fmt.Fprintln(cmd.OutOrStdout(), export.Key)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)
}
