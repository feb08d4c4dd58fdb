package cli

import (
	"context"

	"github.com/spf13/cobra"

	"gear-guard/internal/migrate"
	"gear-guard/pkg/config"
	applogger "gear-guard/pkg/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Управление схемой базы данных",
	}
	cmd.AddCommand(migrateUpCmd(), migrateStatusCmd(), migrateDownCmd())
	return cmd
}

func newRunner() (migrate.Runner, error) {
	cfg := config.New()
	return migrate.New(cfg.Postgres.DSN, applogger.NewLogger(cfg.Log.Level, ""))
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Применить все новые миграции",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner()
			if err != nil {
				return err
			}
			return runner.Up(context.Background())
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Показать примененные и ожидающие миграции",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner()
			if err != nil {
				return err
			}
			return runner.Status(context.Background())
		},
	}
}

func migrateDownCmd() *cobra.Command {
	var target int64
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Откатить последнюю миграцию (или до --target)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner()
			if err != nil {
				return err
			}
			return runner.Down(context.Background(), target)
		},
	}
	cmd.Flags().Int64Var(&target, "target", 0, "версия, до которой откатить")
	return cmd
}
