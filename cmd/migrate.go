package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "migrate: init store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate: apply schema")
		}
		zap.L().Info("schema up to date", zap.String("driver", cfg.Store.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
