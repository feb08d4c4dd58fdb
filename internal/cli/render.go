package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"gear-guard/internal/board"
	"gear-guard/internal/entities"
)

var stageColors = map[entities.RequestStage]*color.Color{
	entities.StageNew:        color.New(color.FgHiBlue, color.Bold),
	entities.StageInProgress: color.New(color.FgYellow, color.Bold),
	entities.StageRepaired:   color.New(color.FgHiGreen, color.Bold),
	entities.StageScrap:      color.New(color.FgRed, color.Bold),
}

var priorityColors = map[entities.RequestPriority]*color.Color{
	entities.PriorityLow:      color.New(color.FgHiBlack),
	entities.PriorityMedium:   color.New(color.FgWhite),
	entities.PriorityHigh:     color.New(color.FgYellow),
	entities.PriorityCritical: color.New(color.FgHiRed),
}

func renderBoard(w io.Writer, b *board.Board) {
	cols := b.Columns()
	for _, stage := range entities.AllStages {
		cards := cols[stage]
		stageColors[stage].Fprintf(w, "%s (%d)\n", stage, len(cards))
		if len(cards) == 0 {
			fmt.Fprintln(w, "  —")
			continue
		}
		for _, c := range cards {
			fmt.Fprintf(w, "  #%-4d %s %s%s\n", c.ID, priorityLabel(c.Priority), c.Subject, cardSuffix(c))
		}
	}
}

func priorityLabel(p entities.RequestPriority) string {
	if c, ok := priorityColors[p]; ok {
		return c.Sprintf("[%s]", p)
	}
	return fmt.Sprintf("[%s]", p)
}

func cardSuffix(c entities.MaintenanceRequest) string {
	s := ""
	if c.EquipmentName != nil {
		s += " · " + *c.EquipmentName
	}
	if c.TechnicianName != nil {
		s += " · " + *c.TechnicianName
	}
	if c.IsOverdue {
		s += " " + color.New(color.FgHiRed).Sprint("просрочена")
	}
	return s
}
