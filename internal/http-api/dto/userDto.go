package dto

import (
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/policy"
)

type UserResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	Bio       *string     `json:"bio"`
	Role      policy.Role `json:"role"`
}

func UserFromModel(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

// CreateUserDTO is the admin-only create payload
type CreateUserDTO struct {
	Username  string      `json:"username" binding:"required,max=150"`
	Email     string      `json:"email" binding:"required,email,max=254"`
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	Bio       *string     `json:"bio"`
	Role      policy.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateUserDTO carries only the submitted fields, nil means untouched
type UpdateUserDTO struct {
	Username  *string      `json:"username" binding:"omitempty,max=150"`
	Email     *string      `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Bio       *string      `json:"bio"`
	Role      *policy.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}
