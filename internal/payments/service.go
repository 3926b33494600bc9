// Package payments records collection attempts and reflects their outcome
// onto the registration lifecycle.
package payments

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tabor-plzen/camp-api/internal/models"
	"github.com/tabor-plzen/camp-api/internal/notifier"
	"github.com/tabor-plzen/camp-api/internal/registrations"
)

var (
	ErrRegistrationNotFound  = errors.New("payments: registration not found")
	ErrAlreadyPaid           = errors.New("payments: registration already paid")
	ErrRegistrationCancelled = errors.New("payments: registration is cancelled")
	ErrProviderDeclined      = errors.New("payments: payment declined by provider")
)

const (
	defaultCurrency = "CZK"

	// Same-second transaction ids can collide on the 4-digit suffix; a
	// couple of regenerations always clears that.
	maxIDAttempts = 3
)

type Service struct {
	db              *gorm.DB
	provider        Provider
	notifier        notifier.Notifier
	providerTimeout time.Duration
	logger          *zap.Logger
	newID           func() string
}

func NewService(db *gorm.DB, provider Provider, n notifier.Notifier, providerTimeout time.Duration, logger *zap.Logger) *Service {
	if providerTimeout <= 0 {
		providerTimeout = 15 * time.Second
	}
	return &Service{
		db:              db,
		provider:        provider,
		notifier:        n,
		providerTimeout: providerTimeout,
		logger:          logger,
		newID:           newTransactionID,
	}
}

// ProcessCardPayment charges a wallet token (Google Pay / Apple Pay) for the
// camp price and marks the registration paid on success. Exactly one payment
// row is written per attempt; a declined attempt leaves the registration
// untouched. Cancelled registrations are never charged.
func (s *Service) ProcessCardPayment(ctx context.Context, registrationID uint, method models.PaymentMethod, token string) (*models.Payment, error) {
	reg, err := s.loadRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := payable(reg.Status); err != nil {
		return nil, err
	}

	amount := reg.Camp.Price

	providerCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()
	providerErr := s.provider.ProcessPayment(providerCtx, token, amount, defaultCurrency)

	payment := models.Payment{
		RegistrationID: reg.ID,
		Amount:         amount,
		Currency:       defaultCurrency,
		Method:         method,
		Token:          token,
		ProcessedAt:    time.Now(),
	}

	if providerErr != nil {
		if errors.Is(providerErr, ErrDeclined) {
			payment.Status = models.PaymentFailed
			if err := s.createWithFreshID(s.db.WithContext(ctx), &payment); err != nil {
				s.logger.Error("failed to record declined payment",
					zap.Uint("registration_id", reg.ID), zap.Error(err))
			}
			s.logger.Info("payment declined",
				zap.Uint("registration_id", reg.ID),
				zap.String("transaction_id", payment.TransactionID))
			return nil, ErrProviderDeclined
		}
		// Timeout or gateway failure: definite failure outcome, nothing
		// persisted beyond the log.
		s.logger.Error("payment provider error",
			zap.Uint("registration_id", reg.ID), zap.Error(providerErr))
		return nil, fmt.Errorf("process card payment: %w", providerErr)
	}

	payment.Status = models.PaymentCompleted
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-check under the transaction so a concurrent payment or
		// cancellation cannot race this one past the status guard.
		var current models.Registration
		if err := tx.First(&current, reg.ID).Error; err != nil {
			return err
		}
		if err := payable(current.Status); err != nil {
			return err
		}
		if err := s.createWithFreshID(tx, &payment); err != nil {
			return err
		}
		if err := tx.Model(&current).Update("status", models.RegistrationPaid).Error; err != nil {
			return err
		}
		current.Status = models.RegistrationPaid
		return registrations.Snapshot(tx, &current, "paid via "+string(method))
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyPaid) || errors.Is(err, ErrRegistrationCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("record card payment: %w", err)
	}

	s.logger.Info("payment completed",
		zap.Uint("registration_id", reg.ID),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("method", string(method)))

	reg.Status = models.RegistrationPaid
	s.notify(*reg, payment)
	return &payment, nil
}

// ProcessBankTransfer records a pending payment at the camp price and
// advances the registration to confirmed. Reconciliation of the actual funds
// happens out of band.
func (s *Service) ProcessBankTransfer(ctx context.Context, registrationID uint) (*models.Payment, error) {
	reg, err := s.loadRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := payable(reg.Status); err != nil {
		return nil, err
	}

	payment := models.Payment{
		RegistrationID: reg.ID,
		Amount:         reg.Camp.Price,
		Currency:       defaultCurrency,
		Method:         models.MethodBankTransfer,
		Status:         models.PaymentPending,
		ProcessedAt:    time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Registration
		if err := tx.First(&current, reg.ID).Error; err != nil {
			return err
		}
		if err := payable(current.Status); err != nil {
			return err
		}
		if err := s.createWithFreshID(tx, &payment); err != nil {
			return err
		}
		if err := tx.Model(&current).Update("status", models.RegistrationConfirmed).Error; err != nil {
			return err
		}
		current.Status = models.RegistrationConfirmed
		return registrations.Snapshot(tx, &current, "bank transfer initiated")
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyPaid) || errors.Is(err, ErrRegistrationCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("record bank transfer: %w", err)
	}

	s.logger.Info("bank transfer recorded",
		zap.Uint("registration_id", reg.ID),
		zap.String("transaction_id", payment.TransactionID))

	reg.Status = models.RegistrationConfirmed
	s.notify(*reg, payment)
	return &payment, nil
}

// ListByRegistration returns the payment attempts for a registration, newest
// first.
func (s *Service) ListByRegistration(ctx context.Context, registrationID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("processed_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list payments for registration %d: %w", registrationID, err)
	}
	return payments, nil
}

func (s *Service) loadRegistration(ctx context.Context, id uint) (*models.Registration, error) {
	var reg models.Registration
	err := s.db.WithContext(ctx).Preload("Camp").First(&reg, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("load registration %d: %w", id, err)
	}
	return &reg, nil
}

// payable gates the status transitions a payment may start from. Cancelled is
// terminal: the spot was already released, so charging would resurrect a
// registration the ledger no longer accounts for.
func payable(status models.RegistrationStatus) error {
	switch status {
	case models.RegistrationPaid:
		return ErrAlreadyPaid
	case models.RegistrationCancelled:
		return ErrRegistrationCancelled
	}
	return nil
}

// createWithFreshID inserts the payment row, regenerating the transaction id
// when it collides with an existing one. The provider has already been
// charged by the time this runs, so a suffix collision must not fail the
// attempt.
func (s *Service) createWithFreshID(tx *gorm.DB, payment *models.Payment) error {
	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		payment.TransactionID = s.newID()
		err = tx.Create(payment).Error
		if err == nil || !isDuplicateTransactionID(err) {
			return err
		}
	}
	return err
}

func isDuplicateTransactionID(err error) bool {
	return err != nil && strings.Contains(err.Error(), "payments.transaction_id")
}

func (s *Service) notify(reg models.Registration, payment models.Payment) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyPayment(reg, payment); err != nil {
		s.logger.Warn("payment notification failed", zap.Error(err))
	}
}

// newTransactionID builds a TXN<timestamp><4 digits> identifier. The unique
// index on payments.transaction_id backstops the slim same-second collision
// window.
func newTransactionID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	suffix := int64(1000)
	if err == nil {
		suffix += n.Int64()
	}
	return fmt.Sprintf("TXN%s%d", time.Now().UTC().Format("20060102150405"), suffix)
}
