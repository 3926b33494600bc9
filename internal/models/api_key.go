package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey authenticates staff automation (photo uploads from camp devices)
// without a browser session.
type APIKey struct {
	gorm.Model
	UserID     uint       `json:"user_id"`
	User       User       `json:"-"`
	Key        string     `json:"-" gorm:"uniqueIndex"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
