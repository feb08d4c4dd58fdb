package services

import (
	"time"

	"gear-guard/internal/entities"
)

// IsOverdue: плановая дата уже прошла (по календарным дням в часовом поясе now),
// а заявка всё ещё не закрыта. Заявка на сегодня просроченной не бывает.
func IsOverdue(req *entities.MaintenanceRequest, now time.Time) bool {
	if req == nil || req.ScheduledDate == nil || req.Stage.IsClosed() {
		return false
	}
	return calendarDay(*req.ScheduledDate, now.Location()).Before(calendarDay(now, now.Location()))
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func markOverdue(list []entities.MaintenanceRequest, now time.Time) {
	for i := range list {
		list[i].IsOverdue = IsOverdue(&list[i], now)
	}
}
