package models

import (
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleParent = "parent"
)

type User struct {
	gorm.Model
	Email        string `json:"email" gorm:"uniqueIndex"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	// Set for accounts created through Google sign-in.
	GoogleID *string `json:"-" gorm:"uniqueIndex"`
}
