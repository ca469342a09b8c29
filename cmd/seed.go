package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo user and default tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "seed: init store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "seed: migrate")
		}

		user, err := st.GetUserByUsername(ctx, "demo")
		if err != nil {
			return eris.Wrap(err, "seed: lookup demo user")
		}
		if user == nil {
			hash, err := auth.HashPassword("demo123")
			if err != nil {
				return eris.Wrap(err, "seed: hash password")
			}
			user, err = st.CreateUser(ctx, "demo", "demo@example.com", hash, "Empresa Demo")
			if err != nil {
				return eris.Wrap(err, "seed: create demo user")
			}
			zap.L().Info("demo user created", zap.Int64("id", user.ID))
		} else {
			zap.L().Info("demo user already present", zap.Int64("id", user.ID))
		}

		if err := st.SeedTags(ctx, user.ID); err != nil {
			return eris.Wrap(err, "seed: default tags")
		}
		zap.L().Info("seed complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
