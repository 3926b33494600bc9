// Package registrations implements the enrollment lifecycle: spot-guarded
// creation, access-code lookup and cancellation.
package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tabor-plzen/camp-api/internal/accesscode"
	"github.com/tabor-plzen/camp-api/internal/camps"
	"github.com/tabor-plzen/camp-api/internal/models"
	"github.com/tabor-plzen/camp-api/internal/notifier"
)

var (
	ErrNotFound         = errors.New("registrations: registration not found")
	ErrCampNotFound     = errors.New("registrations: camp not found")
	ErrCampFull         = errors.New("registrations: camp is full")
	ErrDuplicate        = errors.New("registrations: user already registered for this camp")
	ErrPaidRegistration = errors.New("registrations: paid registration requires a refund before cancelling")
	ErrAlreadyCancelled = errors.New("registrations: registration already cancelled")
)

type Service struct {
	db       *gorm.DB
	codes    *accesscode.Generator
	notifier notifier.Notifier
	logger   *zap.Logger
}

func NewService(db *gorm.DB, codes *accesscode.Generator, n notifier.Notifier, logger *zap.Logger) *Service {
	return &Service{db: db, codes: codes, notifier: n, logger: logger}
}

// CreateInput carries everything a parent submits on the registration form.
type CreateInput struct {
	CampID uint
	Child  models.ChildFields
	Parent models.ParentFields

	SpecialRequirements      string
	HasMedicalIssues         bool
	MedicalIssuesDescription string

	// Nil for guest registrations.
	UserID *uint
}

// Create claims a spot for a child. The duplicate guard, the spot decrement,
// the code allocation and the insert all ride one transaction so two parents
// racing for the last spot cannot both win.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Registration, error) {
	var reg models.Registration
	var camp models.Camp
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&camp, in.CampID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampNotFound
			}
			return err
		}

		if in.UserID != nil {
			var count int64
			err := tx.Model(&models.Registration{}).
				Where("camp_id = ? AND user_id = ? AND status <> ?", in.CampID, *in.UserID, models.RegistrationCancelled).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicate
			}
		}

		// Compare-and-swap on the spot counter. Zero rows touched means
		// someone else took the last spot after our read.
		res := tx.Model(&models.Camp{}).
			Where("id = ? AND available_spots > 0", in.CampID).
			UpdateColumn("available_spots", gorm.Expr("available_spots - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCampFull
		}

		code, err := s.codes.Next(tx)
		if err != nil {
			return err
		}

		reg = models.Registration{
			CampID:                   in.CampID,
			ChildFields:              in.Child,
			ParentFields:             in.Parent,
			SpecialRequirements:      in.SpecialRequirements,
			HasMedicalIssues:         in.HasMedicalIssues,
			MedicalIssuesDescription: in.MedicalIssuesDescription,
			AccessCode:               code,
			Status:                   models.RegistrationPending,
			RegisteredAt:             time.Now(),
			UserID:                   in.UserID,
		}
		if err := tx.Create(&reg).Error; err != nil {
			return err
		}
		return snapshot(tx, &reg, "created")
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCampNotFound), errors.Is(err, ErrCampFull), errors.Is(err, ErrDuplicate):
			return nil, err
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	reg.Camp = camp
	s.logger.Info("registration created",
		zap.Uint("registration_id", reg.ID),
		zap.Uint("camp_id", reg.CampID),
		zap.String("access_code", reg.AccessCode))

	if s.notifier != nil {
		if err := s.notifier.NotifyRegistration(reg); err != nil {
			s.logger.Warn("registration notification failed", zap.Error(err))
		}
	}
	return &reg, nil
}

// GetByAccessCode resolves a registration by its bearer code. The code is the
// credential; existence is the only check.
func (s *Service) GetByAccessCode(ctx context.Context, code string) (*models.Registration, error) {
	var reg models.Registration
	err := s.db.WithContext(ctx).Preload("Camp").Where("access_code = ?", code).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup registration by code: %w", err)
	}
	return &reg, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.db.WithContext(ctx).Preload("Camp").
		Where("user_id = ?", userID).
		Order("registered_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("list registrations for user %d: %w", userID, err)
	}
	return regs, nil
}

// Cancel releases the spot. A paid registration needs adminOverride, which
// also flips its completed payment to refunded.
func (s *Service) Cancel(ctx context.Context, code string, adminOverride bool) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		if err := tx.Where("access_code = ?", code).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		switch reg.Status {
		case models.RegistrationCancelled:
			return ErrAlreadyCancelled
		case models.RegistrationPaid:
			if !adminOverride {
				return ErrPaidRegistration
			}
			err := tx.Model(&models.Payment{}).
				Where("registration_id = ? AND status = ?", reg.ID, models.PaymentCompleted).
				Update("status", models.PaymentRefunded).Error
			if err != nil {
				return err
			}
		}

		if err := tx.Model(&reg).Update("status", models.RegistrationCancelled).Error; err != nil {
			return err
		}
		reg.Status = models.RegistrationCancelled
		if err := snapshot(tx, &reg, "cancelled"); err != nil {
			return err
		}
		return camps.RecomputeSpots(tx, reg.CampID)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrPaidRegistration), errors.Is(err, ErrAlreadyCancelled):
			return err
		}
		return fmt.Errorf("cancel registration: %w", err)
	}
	s.logger.Info("registration cancelled", zap.String("access_code", code), zap.Bool("admin_override", adminOverride))
	return nil
}

// Snapshot writes a history row for a status transition. Exported for the
// payment flow, which moves statuses inside its own transaction.
func Snapshot(tx *gorm.DB, reg *models.Registration, note string) error {
	return snapshot(tx, reg, note)
}

func snapshot(tx *gorm.DB, reg *models.Registration, note string) error {
	return tx.Create(&models.RegistrationHistory{
		RegistrationID: reg.ID,
		CampID:         reg.CampID,
		Status:         reg.Status,
		Note:           note,
	}).Error
}
