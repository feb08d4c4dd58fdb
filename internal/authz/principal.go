package authz

import "gear-guard/internal/entities"

// Principal — аутентифицированный пользователь, от имени которого выполняется операция.
type Principal struct {
	ID     uint64        `json:"id"`
	Role   entities.Role `json:"role"`
	TeamID *uint64       `json:"team_id"`
}

func PrincipalFromUser(u *entities.User) Principal {
	return Principal{ID: u.ID, Role: u.Role, TeamID: u.TeamID}
}

func (p Principal) IsManager() bool {
	return p.Role == entities.RoleManager
}
