package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gear-guard/seeders"
)

func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Заполнить базу демо-данными",
		Long: `Создаёт команды Mechanics и IT Support, менеджера, техников, сотрудника,
две единицы оборудования и одну заявку в работе. Повторный запуск безопасен.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if err := seeders.SeedDemoData(ctx, e.pool, e.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Готово. Пароль всех пользователей: %s\n", seeders.DefaultPassword)
			return nil
		},
	}
}
