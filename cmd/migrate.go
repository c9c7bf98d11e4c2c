package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// migrateCmd creates or upgrades the schema of both stores.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the equipos schema",
	Long: `Creates the equipos and especificaciones tables on the local and, when
configured, the remote database. Legacy tables get the is_deleted, created_at
and updated_at columns.`,
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

		// Opening a store migrates it.
		st, err := openStores(ctx, cfg, l, cfg.Remote.Enabled())
		if err != nil {
			return err
		}
		st.Close()

		l.Info("Migration complete")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
