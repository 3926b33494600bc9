package models

import (
	"time"

	"gorm.io/gorm"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationPaid      RegistrationStatus = "paid"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Active reports whether the registration still holds a camp spot.
func (s RegistrationStatus) Active() bool {
	return s != RegistrationCancelled
}

type ChildFields struct {
	ChildName      string    `json:"child_name"`
	ChildSurname   string    `json:"child_surname"`
	ChildBirthDate time.Time `json:"child_birth_date"`
}

type ParentFields struct {
	ParentName  string `json:"parent_name"`
	ParentEmail string `json:"parent_email"`
	ParentPhone string `json:"parent_phone"`
}

type Registration struct {
	gorm.Model
	CampID       uint `json:"camp_id"`
	Camp         Camp `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ChildFields  `gorm:"embedded"`
	ParentFields `gorm:"embedded"`

	SpecialRequirements      string `json:"special_requirements"`
	HasMedicalIssues         bool   `json:"has_medical_issues"`
	MedicalIssuesDescription string `json:"medical_issues_description"`

	AccessCode   string             `json:"access_code" gorm:"uniqueIndex"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registered_at"`

	// Optional link to a parent account. Guest registrations leave it nil;
	// deleting the account severs the link without touching the registration.
	UserID *uint `json:"user_id"`
	User   *User `json:"-" gorm:"constraint:OnDelete:SET NULL"`
}
