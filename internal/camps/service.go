// Package camps covers camp browsing and the administrative camp lifecycle,
// including the available-spots ledger recomputation.
package camps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tabor-plzen/camp-api/internal/accesscode"
	"github.com/tabor-plzen/camp-api/internal/models"
)

var ErrNotFound = errors.New("camps: camp not found")

type Filter struct {
	Type     string
	AgeGroup string
	MaxPrice int
}

type Service struct {
	db     *gorm.DB
	codes  *accesscode.Generator
	logger *zap.Logger
}

func NewService(db *gorm.DB, codes *accesscode.Generator, logger *zap.Logger) *Service {
	return &Service{db: db, codes: codes, logger: logger}
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Camp, error) {
	q := s.db.WithContext(ctx).Model(&models.Camp{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}

	var camps []models.Camp
	if err := q.Order("start_date").Find(&camps).Error; err != nil {
		return nil, fmt.Errorf("list camps: %w", err)
	}

	if f.AgeGroup != "" {
		filtered := camps[:0]
		for _, c := range camps {
			if matchesAgeGroup(c.AgeGroup, f.AgeGroup) {
				filtered = append(filtered, c)
			}
		}
		camps = filtered
	}
	return camps, nil
}

// Popular returns the first few camps for the landing page.
func (s *Service) Popular(ctx context.Context) ([]models.Camp, error) {
	var camps []models.Camp
	if err := s.db.WithContext(ctx).Limit(3).Find(&camps).Error; err != nil {
		return nil, fmt.Errorf("popular camps: %w", err)
	}
	return camps, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Camp, error) {
	var camp models.Camp
	if err := s.db.WithContext(ctx).First(&camp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get camp %d: %w", id, err)
	}
	return &camp, nil
}

// Create stores a new camp with a staff gallery code and a full spot ledger.
func (s *Service) Create(ctx context.Context, camp *models.Camp) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := s.codes.Next(tx)
		if err != nil {
			return err
		}
		camp.AccessCode = &code
		camp.AvailableSpots = camp.Capacity
		return tx.Create(camp).Error
	})
	if err != nil {
		return fmt.Errorf("create camp: %w", err)
	}
	s.logger.Info("camp created", zap.Uint("camp_id", camp.ID), zap.String("name", camp.Name))
	return nil
}

func (s *Service) Update(ctx context.Context, camp *models.Camp) error {
	res := s.db.WithContext(ctx).Model(&models.Camp{}).Where("id = ?", camp.ID).Updates(map[string]any{
		"name":              camp.Name,
		"location":          camp.Location,
		"type":              camp.Type,
		"age_group":         camp.AgeGroup,
		"short_description": camp.ShortDescription,
		"description":       camp.Description,
		"latitude":          camp.Latitude,
		"longitude":         camp.Longitude,
		"images":            camp.Images,
		"activities":        camp.Activities,
		"start_date":        camp.StartDate,
		"end_date":          camp.EndDate,
	})
	if res.Error != nil {
		return fmt.Errorf("update camp %d: %w", camp.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the camp together with its registrations, payments, photos
// and updates.
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var camp models.Camp
		if err := tx.First(&camp, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var regIDs []uint
		if err := tx.Model(&models.Registration{}).Where("camp_id = ?", id).Pluck("id", &regIDs).Error; err != nil {
			return err
		}
		if len(regIDs) > 0 {
			if err := tx.Where("registration_id IN ?", regIDs).Delete(&models.Payment{}).Error; err != nil {
				return err
			}
		}
		for _, m := range []any{&models.Registration{}, &models.CampPhoto{}, &models.LiveUpdate{}} {
			if err := tx.Where("camp_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&camp).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete camp %d: %w", id, err)
	}
	s.logger.Info("camp deleted", zap.Uint("camp_id", id))
	return nil
}

// UpdateCapacity changes the capacity and recomputes the spot ledger in the
// same transaction. Oversubscribed camps floor at zero free spots; existing
// registrations are never cancelled by a capacity cut.
func (s *Service) UpdateCapacity(ctx context.Context, id uint, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("camps: capacity must not be negative")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Camp{}).Where("id = ?", id).Update("capacity", capacity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return RecomputeSpots(tx, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update capacity of camp %d: %w", id, err)
	}
	return nil
}

func (s *Service) UpdatePrice(ctx context.Context, id uint, price int) error {
	res := s.db.WithContext(ctx).Model(&models.Camp{}).Where("id = ?", id).Update("price", price)
	if res.Error != nil {
		return fmt.Errorf("update price of camp %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Duplicate clones a camp under new dates with a fresh gallery code and an
// empty registration book.
func (s *Service) Duplicate(ctx context.Context, id uint, start, end time.Time) (*models.Camp, error) {
	var clone models.Camp
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var camp models.Camp
		if err := tx.First(&camp, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		clone = camp
		clone.Model = gorm.Model{}
		clone.StartDate = start
		clone.EndDate = end
		clone.AvailableSpots = clone.Capacity
		code, err := s.codes.Next(tx)
		if err != nil {
			return err
		}
		clone.AccessCode = &code
		return tx.Create(&clone).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("duplicate camp %d: %w", id, err)
	}
	return &clone, nil
}

// RecomputeSpots reloads available_spots from the registration book:
// max(0, capacity - count of non-cancelled registrations). Callers hold the
// transaction that made the counts move.
func RecomputeSpots(tx *gorm.DB, campID uint) error {
	var camp models.Camp
	if err := tx.First(&camp, campID).Error; err != nil {
		return err
	}
	var active int64
	err := tx.Model(&models.Registration{}).
		Where("camp_id = ? AND status <> ?", campID, models.RegistrationCancelled).
		Count(&active).Error
	if err != nil {
		return err
	}
	spots := camp.Capacity - int(active)
	if spots < 0 {
		spots = 0
	}
	return tx.Model(&camp).Update("available_spots", spots).Error
}

// matchesAgeGroup mirrors the loose age filter the web catalogue uses: a camp
// matches a bracket when its advertised range mentions any age in it.
func matchesAgeGroup(campAge, filter string) bool {
	var ages []string
	switch filter {
	case "6-9":
		ages = []string{"6", "7", "8", "9"}
	case "10-13":
		ages = []string{"10", "11", "12", "13"}
	case "14-17":
		ages = []string{"14", "15", "16", "17"}
	default:
		return true
	}
	for _, a := range ages {
		if strings.Contains(campAge, a) {
			return true
		}
	}
	return false
}
