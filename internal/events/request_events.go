package events

import (
	"gear-guard/internal/entities"
	"gear-guard/pkg/constants"
)

const (
	RequestsStaleName      = "requests.stale"
	EquipmentStaleName     = "equipment.stale"
	TechnicianAssignedName = "request.technician_assigned"
)

// RequestsStaleEvent: список заявок изменился и клиентам стоит его перечитать.
type RequestsStaleEvent struct {
	RequestID uint64
	Reason    string
}

func (e RequestsStaleEvent) Name() string { return RequestsStaleName }

// List — имя списка для websocket-сигнала.
func (e RequestsStaleEvent) List() string { return constants.StaleRequests }

// EquipmentStaleEvent публикуется после каскадного списания оборудования.
type EquipmentStaleEvent struct {
	EquipmentID uint64
}

func (e EquipmentStaleEvent) Name() string { return EquipmentStaleName }

func (e EquipmentStaleEvent) List() string { return constants.StaleEquipment }

// TechnicianAssignedEvent — заявка создана сразу с назначенным техником.
type TechnicianAssignedEvent struct {
	Request      entities.MaintenanceRequest
	TechnicianID uint64
}

func (e TechnicianAssignedEvent) Name() string { return TechnicianAssignedName }
