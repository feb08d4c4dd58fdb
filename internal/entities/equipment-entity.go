package entities

import (
	"time"

	"gear-guard/pkg/types"
)

type Equipment struct {
	ID                 uint64          `json:"id"`
	Name               string          `json:"name"`
	SerialNumber       string          `json:"serial_number"`
	Department         string          `json:"department"`
	Location           string          `json:"location"`
	Description        *string         `json:"description"`
	Status             EquipmentStatus `json:"status"`
	MaintenanceTeamID  *uint64         `json:"maintenance_team_id"`
	PurchaseDate       *time.Time      `json:"purchase_date"`
	WarrantyExpiration *time.Time      `json:"warranty_expiration"`

	types.BaseEntity

	Requests []MaintenanceRequest `json:"requests,omitempty" db:"-"`
}
