package dto

import (
	"gear-guard/internal/entities"

	"github.com/aarondl/null/v8"
)

type SignupDTO struct {
	Name     string      `json:"name"     validate:"required,max=255"`
	Email    string      `json:"email"    validate:"required,custom_email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     string      `json:"role"     validate:"omitempty,user_role"`
	TeamID   null.Uint64 `json:"team_id"  validate:"omitempty,gt=0"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken string         `json:"access_token"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}
