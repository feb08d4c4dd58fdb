package dto

import (
	"encoding/json"
	"time"

	"github.com/aarondl/null/v8"

	"gear-guard/pkg/utils"
)

type CreateMaintenanceRequestDTO struct {
	Subject       string       `json:"subject"        validate:"required,max=255"`
	Description   null.String  `json:"description"`
	Type          string       `json:"type"           validate:"required,request_type"`
	Priority      null.String  `json:"priority"       validate:"omitempty,request_priority"`
	EquipmentID   uint64       `json:"equipment_id"   validate:"required,gt=0"`
	TeamID        null.Uint64  `json:"team_id"        validate:"omitempty,gt=0"`
	TechnicianID  null.Uint64  `json:"technician_id"  validate:"omitempty,gt=0"`
	ScheduledDate ScheduleDate `json:"scheduled_date"`
}

// ScheduleDate принимает дату из формы (YYYY-MM-DD, полночь в часовом поясе сервера) или RFC3339.
// Пустая строка и null означают, что дата не задана.
type ScheduleDate null.Time

func (d *ScheduleDate) UnmarshalJSON(data []byte) error {
	*d = ScheduleDate{}
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	t, _, err := utils.ParseDate(raw, time.Local)
	if err != nil {
		return err
	}
	*d = ScheduleDate{Time: t, Valid: true}
	return nil
}

type UpdateStageDTO struct {
	Stage string `json:"stage" validate:"required"`
}

// LogDurationDTO принимает часы числом или строкой ("2.5", "2,5").
type LogDurationDTO struct {
	Hours json.RawMessage `json:"hours"`
}

// RawHours возвращает значение без кавычек, как его ввёл пользователь.
func (d LogDurationDTO) RawHours() string {
	var s string
	if err := json.Unmarshal(d.Hours, &s); err == nil {
		return s
	}
	if string(d.Hours) == "null" {
		return ""
	}
	return string(d.Hours)
}
