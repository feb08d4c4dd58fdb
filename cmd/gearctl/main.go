package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gear-guard/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gearctl",
		Short: "GearGuard - консоль обслуживания оборудования",
		Long: `gearctl управляет схемой базы, демо-данными, канбан-доской заявок
и импортом оборудования. Настройки берутся из .env, CONFIG_FILE и переменных окружения.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.SeedCmd())
	rootCmd.AddCommand(cli.RequestsCmd())
	rootCmd.AddCommand(cli.EquipmentCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
