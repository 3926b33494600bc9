package models

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	MethodGooglePay    PaymentMethod = "googlepay"
	MethodApplePay     PaymentMethod = "applepay"
	MethodBankTransfer PaymentMethod = "banktransfer"
)

// Payment records a single collection attempt. Rows are immutable after
// creation except for Status.
type Payment struct {
	gorm.Model
	RegistrationID uint          `json:"registration_id"`
	Registration   Registration  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Amount         int           `json:"amount"`
	Currency       string        `json:"currency"`
	Method         PaymentMethod `json:"method"`
	// Opaque token handed over by the wallet SDK, forwarded to the
	// provider verbatim and never interpreted here.
	Token         string        `json:"-"`
	TransactionID string        `json:"transaction_id" gorm:"uniqueIndex"`
	Status        PaymentStatus `json:"status"`
	ProcessedAt   time.Time     `json:"processed_at"`
}
