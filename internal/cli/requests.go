package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gear-guard/internal/authz"
	"gear-guard/internal/board"
	"gear-guard/internal/entities"
	"gear-guard/internal/services"
	"gear-guard/pkg/types"
)

func RequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Заявки на обслуживание",
	}
	cmd.PersistentFlags().String("as", "", "email пользователя, от имени которого выполняется команда")
	cmd.AddCommand(requestsBoardCmd(), requestsMoveCmd())
	return cmd
}

func requestsBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Показать канбан-доску заявок, видимых пользователю",
		Example: `  gearctl requests board --as manager@gearguard.com
  gearctl requests board --as alice@gearguard.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			principal, err := e.principal(ctx, asFlag(cmd))
			if err != nil {
				return err
			}
			b, err := loadBoard(ctx, e, principal)
			if err != nil {
				return err
			}
			renderBoard(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func requestsMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <stage>",
		Short: "Перевести заявку в другую стадию",
		Long: `Карточка сразу переносится на доске, затем изменение отправляется в базу.
Если сервис отказал, карточка возвращается на место.

Стадии: NEW, IN_PROGRESS, REPAIRED, SCRAP.`,
		Example: `  gearctl requests move 1 REPAIRED --as alice@gearguard.com`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("некорректный id заявки: %s", args[0])
			}
			stage := entities.RequestStage(strings.ToUpper(args[1]))

			ctx := context.Background()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			principal, err := e.principal(ctx, asFlag(cmd))
			if err != nil {
				return err
			}
			b, err := loadBoard(ctx, e, principal)
			if err != nil {
				return err
			}
			return moveCard(ctx, cmd.OutOrStdout(), e.requestService(), principal, b, id, stage)
		},
	}
}

func asFlag(cmd *cobra.Command) string {
	email, _ := cmd.Flags().GetString("as")
	return email
}

func loadBoard(ctx context.Context, e *env, principal authz.Principal) (*board.Board, error) {
	list, _, err := e.requestService().ListRequests(ctx, principal, types.Filter{})
	if err != nil {
		return nil, err
	}
	return board.New(list), nil
}

// moveCard переносит карточку сразу и откатывает её, если сервис отказал.
func moveCard(
	ctx context.Context,
	out io.Writer,
	svc services.MaintenanceRequestServiceInterface,
	principal authz.Principal,
	b *board.Board,
	id uint64,
	stage entities.RequestStage,
) error {
	change, err := b.Move(id, stage)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "… %s\n", change)

	updated, err := svc.TransitionStage(ctx, principal, id, stage)
	if err != nil {
		if cascade, ok := services.IsCascadeError(err); ok {
			b.Replace(*updated)
			color.New(color.FgYellow).Fprintf(out,
				"⚠ стадия сохранена, но оборудование #%d не списано: %v\n", cascade.EquipmentID, cascade.Err)
			renderBoard(out, b)
			return nil
		}
		if b.Revert(change) {
			color.New(color.FgRed).Fprintf(out, "✗ %s отменено: %v\n", change, err)
		}
		renderBoard(out, b)
		return err
	}

	b.Replace(*updated)
	color.New(color.FgGreen).Fprintf(out, "✓ %s\n", change)
	renderBoard(out, b)
	return nil
}
