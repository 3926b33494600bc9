package models

import (
	"gorm.io/gorm"
)

// RegistrationHistory keeps a snapshot per status transition so status
// disputes can be traced back.
type RegistrationHistory struct {
	gorm.Model
	RegistrationID uint               `json:"registration_id"`
	CampID         uint               `json:"camp_id"`
	Status         RegistrationStatus `json:"status"`
	Note           string             `json:"note"`
}
