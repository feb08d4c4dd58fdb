// Package board держит локальное представление канбан-доски заявок и
// позволяет менять стадию оптимистично с явным откатом.
package board

import (
	"fmt"
	"sort"
	"sync"

	"gear-guard/internal/entities"
	apperrors "gear-guard/pkg/errors"
)

// StageChange — команда перемещения карточки. Несёт прежнюю стадию для отката.
type StageChange struct {
	RequestID uint64
	From      entities.RequestStage
	To        entities.RequestStage
}

func (c StageChange) String() string {
	return fmt.Sprintf("#%d %s → %s", c.RequestID, c.From, c.To)
}

// Board группирует заявки по стадиям.
type Board struct {
	mu    sync.RWMutex
	cards map[uint64]entities.MaintenanceRequest
}

func New(requests []entities.MaintenanceRequest) *Board {
	b := &Board{cards: make(map[uint64]entities.MaintenanceRequest, len(requests))}
	for _, r := range requests {
		b.cards[r.ID] = r
	}
	return b
}

// Move применяет смену стадии локально и возвращает команду для отката.
func (b *Board) Move(id uint64, to entities.RequestStage) (StageChange, error) {
	if !to.IsValid() {
		return StageChange{}, apperrors.NewValidationError("неизвестная стадия: %q", to)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	card, ok := b.cards[id]
	if !ok {
		return StageChange{}, apperrors.ErrNotFound
	}
	change := StageChange{RequestID: id, From: card.Stage, To: to}
	card.Stage = to
	b.cards[id] = card
	return change, nil
}

// Revert возвращает карточку в стадию до Move. Если карточку успели сдвинуть ещё раз,
// откат не выполняется.
func (b *Board) Revert(change StageChange) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	card, ok := b.cards[change.RequestID]
	if !ok || card.Stage != change.To {
		return false
	}
	card.Stage = change.From
	b.cards[change.RequestID] = card
	return true
}

// Replace кладёт на доску подтверждённое сервером состояние заявки.
func (b *Board) Replace(req entities.MaintenanceRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cards[req.ID] = req
}

func (b *Board) Card(id uint64) (entities.MaintenanceRequest, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.cards[id]
	return c, ok
}

// Columns возвращает колонки в порядке entities.AllStages, карточки внутри по id.
func (b *Board) Columns() map[entities.RequestStage][]entities.MaintenanceRequest {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cols := make(map[entities.RequestStage][]entities.MaintenanceRequest, len(entities.AllStages))
	for _, s := range entities.AllStages {
		cols[s] = []entities.MaintenanceRequest{}
	}
	for _, c := range b.cards {
		cols[c.Stage] = append(cols[c.Stage], c)
	}
	for _, list := range cols {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return cols
}
