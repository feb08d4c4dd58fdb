package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gear-guard/internal/repositories"
	"gear-guard/internal/services"
)

func EquipmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equipment",
		Short: "Оборудование",
	}
	cmd.AddCommand(equipmentImportCmd())
	return cmd
}

func equipmentImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Загрузить оборудование из Excel",
		Long: `Ищет строку заголовков с колонками названия и серийного номера
(на английском или русском), необязательные колонки: отдел, расположение, команда.
Уже существующие серийные номера пропускаются.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := context.Background()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			importer := services.NewEquipImportService(
				repositories.NewEquipmentRepository(e.pool, e.logger),
				repositories.NewTeamRepository(e.pool, e.logger),
				e.logger,
			)
			res, err := importer.Import(ctx, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "создано: %d\n", res.Created)
			fmt.Fprintf(out, "пропущено: %d\n", res.Skipped)
			if res.Failed > 0 {
				color.New(color.FgRed).Fprintf(out, "ошибок: %d\n", res.Failed)
				for _, msg := range res.Errors {
					fmt.Fprintf(out, "  %s\n", msg)
				}
			}
			return nil
		},
	}
}
