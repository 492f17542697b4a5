package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewhub/internal/policy"
)

type User struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string      `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string      `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName *string     `gorm:"size:150" json:"first_name,omitempty"`
	LastName  *string     `gorm:"size:150" json:"last_name,omitempty"`
	Bio       *string     `gorm:"type:text" json:"bio,omitempty"`
	Role      policy.Role `gorm:"size:20;default:'user';not null" json:"role"`
	Superuser bool        `gorm:"default:false;not null" json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = policy.RoleUser
	}
	return
}

// Actor converts the stored record into the explicit identity the policy
// package works with.
func (user *User) Actor() policy.Actor {
	return policy.Actor{
		ID:            user.ID,
		Username:      user.Username,
		Role:          user.Role,
		Superuser:     user.Superuser,
		Authenticated: true,
	}
}

func (User) TableName() string {
	return "users"
}
