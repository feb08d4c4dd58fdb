package entities

import "gear-guard/pkg/types"

type User struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"-"`
	Role     Role    `json:"role"`
	TeamID   *uint64 `json:"team_id"`

	types.BaseEntity
}
