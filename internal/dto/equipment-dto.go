package dto

import "github.com/aarondl/null/v8"

type CreateEquipmentDTO struct {
	Name               string      `json:"name"                validate:"required,max=255"`
	SerialNumber       string      `json:"serial_number"       validate:"required,max=100"`
	Department         string      `json:"department"          validate:"required"`
	Location           string      `json:"location"            validate:"required"`
	Description        null.String `json:"description"`
	Status             null.String `json:"status"              validate:"omitempty,equipment_status"`
	MaintenanceTeamID  null.Uint64 `json:"maintenance_team_id" validate:"omitempty,gt=0"`
	PurchaseDate       null.Time   `json:"purchase_date"`
	WarrantyExpiration null.Time   `json:"warranty_expiration"`
}

type UpdateEquipmentDTO struct {
	Name               *string     `json:"name,omitempty"          validate:"omitempty,max=255"`
	SerialNumber       *string     `json:"serial_number,omitempty" validate:"omitempty,max=100"`
	Department         *string     `json:"department,omitempty"`
	Location           *string     `json:"location,omitempty"`
	Description        null.String `json:"description"`
	Status             *string     `json:"status,omitempty"        validate:"omitempty,equipment_status"`
	MaintenanceTeamID  null.Uint64 `json:"maintenance_team_id"     validate:"omitempty,gt=0"`
	PurchaseDate       null.Time   `json:"purchase_date"`
	WarrantyExpiration null.Time   `json:"warranty_expiration"`
}
