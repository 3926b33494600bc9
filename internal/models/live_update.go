package models

import (
	"gorm.io/gorm"
)

type LiveUpdate struct {
	gorm.Model
	CampID   uint    `json:"camp_id"`
	Camp     Camp    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	PhotoURL *string `json:"photo_url"`
}
