package main

import (
	"devquest/internal/platform/config"
	"devquest/internal/platform/logger"
	"devquest/internal/platform/store"
	"devquest/internal/platform/store/schema"
	"devquest/internal/services/ledger"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres schema and the clickhouse ledger table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			l := logger.Get()
			st, err := store.Open(ctx, store.FromEnv(config.New(), "cli"), store.WithLogger(*l))
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(ctx); err != nil {
					l.Error().Err(err).Msg("failed to close store")
				}
			}()

			if err := schema.Apply(ctx, st.PG); err != nil {
				return err
			}
			l.Info().Msg("postgres schema applied")
			if st.CH == nil {
				l.Info().Msg("clickhouse disabled, ledger table skipped")
				return nil
			}
			if err := ledger.EnsureTable(ctx, st.CH); err != nil {
				return err
			}
			l.Info().Msg("ledger table ready")
			return nil
		},
	}
}
