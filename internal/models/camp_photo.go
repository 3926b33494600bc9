package models

import (
	"time"

	"gorm.io/gorm"
)

type CampPhoto struct {
	gorm.Model
	CampID      uint      `json:"camp_id"`
	Camp        Camp      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	FileName    string    `json:"file_name"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
	IsPublic    bool      `json:"is_public"`
}
