package entities

import (
	"time"

	"gear-guard/pkg/types"
)

type MaintenanceRequest struct {
	ID            uint64          `json:"id"`
	Subject       string          `json:"subject"`
	Description   *string         `json:"description"`
	Type          RequestType     `json:"type"`
	Priority      RequestPriority `json:"priority"`
	Stage         RequestStage    `json:"stage"`
	EquipmentID   uint64          `json:"equipment_id"`
	TeamID        *uint64         `json:"team_id"`
	TechnicianID  *uint64         `json:"technician_id"`
	CreatedByID   uint64          `json:"created_by_id"`
	ScheduledDate *time.Time      `json:"scheduled_date"`
	StartedAt     *time.Time      `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
	DurationHours *float64        `json:"duration_hours"`

	types.BaseEntity

	// Вычисляется при чтении, в таблице не хранится
	IsOverdue bool `json:"is_overdue" db:"-"`

	EquipmentName  *string `json:"equipment_name,omitempty" db:"-"`
	TeamName       *string `json:"team_name,omitempty" db:"-"`
	TechnicianName *string `json:"technician_name,omitempty" db:"-"`
}
