package authz

import (
	"gear-guard/internal/entities"
	apperrors "gear-guard/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

// Колонки заявок в запросах репозитория. Таблица maintenance_requests всегда идёт с алиасом mr.
const (
	colTeamID       = "mr.team_id"
	colTechnicianID = "mr.technician_id"
	colCreatedByID  = "mr.created_by_id"
)

// Policy решает, какие заявки видит и может менять пользователь.
// Реализаций ровно три, по одной на роль.
type Policy interface {
	// ScopeReadFilter возвращает предикат, который добавляется через AND к любому списку заявок.
	ScopeReadFilter() sq.Sqlizer
	// CanRead — тот же предикат для уже загруженной заявки.
	CanRead(req *entities.MaintenanceRequest) bool
	// AuthorizeMutate вызывается прямо перед изменением, на только что прочитанной заявке.
	AuthorizeMutate(req *entities.MaintenanceRequest) error
	// CanManageReferenceData: создание и правка оборудования.
	CanManageReferenceData() bool
}

// For выбирает политику по роли. Неизвестная роль получает самый узкий доступ.
func For(p Principal) Policy {
	switch p.Role {
	case entities.RoleManager:
		return managerPolicy{}
	case entities.RoleTechnician:
		return technicianPolicy{id: p.ID, teamID: p.TeamID}
	default:
		return employeePolicy{id: p.ID}
	}
}

type managerPolicy struct{}

func (managerPolicy) ScopeReadFilter() sq.Sqlizer { return sq.And{} }

func (managerPolicy) CanRead(*entities.MaintenanceRequest) bool { return true }

func (managerPolicy) AuthorizeMutate(*entities.MaintenanceRequest) error { return nil }

func (managerPolicy) CanManageReferenceData() bool { return true }

type technicianPolicy struct {
	id     uint64
	teamID *uint64
}

func (t technicianPolicy) ScopeReadFilter() sq.Sqlizer {
	if t.teamID == nil {
		return sq.Eq{colTechnicianID: t.id}
	}
	return sq.Or{
		sq.Eq{colTeamID: *t.teamID},
		sq.Eq{colTechnicianID: t.id},
	}
}

func (t technicianPolicy) CanRead(req *entities.MaintenanceRequest) bool {
	if req.TechnicianID != nil && *req.TechnicianID == t.id {
		return true
	}
	return t.teamID != nil && req.TeamID != nil && *req.TeamID == *t.teamID
}

func (t technicianPolicy) AuthorizeMutate(req *entities.MaintenanceRequest) error {
	if t.CanRead(req) {
		return nil
	}
	return apperrors.ErrUnauthorized
}

func (technicianPolicy) CanManageReferenceData() bool { return false }

type employeePolicy struct {
	id uint64
}

func (e employeePolicy) ScopeReadFilter() sq.Sqlizer {
	return sq.Eq{colCreatedByID: e.id}
}

func (e employeePolicy) CanRead(req *entities.MaintenanceRequest) bool {
	return req.CreatedByID == e.id
}

func (e employeePolicy) AuthorizeMutate(req *entities.MaintenanceRequest) error {
	if e.CanRead(req) {
		return nil
	}
	return apperrors.ErrUnauthorized
}

func (employeePolicy) CanManageReferenceData() bool { return false }
