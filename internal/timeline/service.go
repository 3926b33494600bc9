// Package timeline serves camp photos and live updates, including the
// guest-facing access-code read path.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tabor-plzen/camp-api/internal/models"
)

// ErrCodeNotFound means the access code matches neither a registration nor a
// camp gallery code.
var ErrCodeNotFound = errors.New("timeline: unknown access code")

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Gallery bundles what a code holder may see: the camp name, its public
// photos and its live updates. Nothing from other families' registrations
// leaks through a camp-level code.
type Gallery struct {
	CampName string
	Photos   []models.CampPhoto
	Updates  []models.LiveUpdate
}

// GalleryByAccessCode resolves the code to a camp and returns its gallery.
// Registration codes win over camp-level codes.
func (s *Service) GalleryByAccessCode(ctx context.Context, code string) (*Gallery, error) {
	campID, campName, err := s.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}

	photos, err := s.publicPhotos(ctx, campID)
	if err != nil {
		return nil, err
	}
	updates, err := s.CampUpdates(ctx, campID)
	if err != nil {
		return nil, err
	}
	return &Gallery{CampName: campName, Photos: photos, Updates: updates}, nil
}

// ValidateAccessCode reports whether the code exists in either pool.
func (s *Service) ValidateAccessCode(ctx context.Context, code string) (bool, error) {
	_, _, err := s.resolveCode(ctx, code)
	if errors.Is(err, ErrCodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CampUpdates lists a camp's live updates, newest first.
func (s *Service) CampUpdates(ctx context.Context, campID uint) ([]models.LiveUpdate, error) {
	var updates []models.LiveUpdate
	err := s.db.WithContext(ctx).
		Where("camp_id = ?", campID).
		Order("created_at DESC").
		Find(&updates).Error
	if err != nil {
		return nil, fmt.Errorf("list updates for camp %d: %w", campID, err)
	}
	return updates, nil
}

func (s *Service) CreateUpdate(ctx context.Context, update *models.LiveUpdate) error {
	if err := s.db.WithContext(ctx).Create(update).Error; err != nil {
		return fmt.Errorf("create update: %w", err)
	}
	s.logger.Info("live update created",
		zap.Uint("camp_id", update.CampID),
		zap.String("title", update.Title))
	return nil
}

func (s *Service) DeleteUpdate(ctx context.Context, updateID uint) error {
	res := s.db.WithContext(ctx).Delete(&models.LiveUpdate{}, updateID)
	if res.Error != nil {
		return fmt.Errorf("delete update %d: %w", updateID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Service) UploadPhoto(ctx context.Context, campID uint, fileName, description string) (*models.CampPhoto, error) {
	photo := models.CampPhoto{
		CampID:      campID,
		FileName:    fileName,
		Description: description,
		UploadedAt:  time.Now(),
		IsPublic:    true,
	}
	if err := s.db.WithContext(ctx).Create(&photo).Error; err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	s.logger.Info("photo uploaded",
		zap.Uint("camp_id", campID),
		zap.String("file_name", fileName))
	return &photo, nil
}

func (s *Service) publicPhotos(ctx context.Context, campID uint) ([]models.CampPhoto, error) {
	var photos []models.CampPhoto
	err := s.db.WithContext(ctx).
		Where("camp_id = ? AND is_public = ?", campID, true).
		Order("uploaded_at DESC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("list photos for camp %d: %w", campID, err)
	}
	return photos, nil
}

func (s *Service) resolveCode(ctx context.Context, code string) (uint, string, error) {
	var reg models.Registration
	err := s.db.WithContext(ctx).Preload("Camp").Where("access_code = ?", code).First(&reg).Error
	if err == nil {
		return reg.CampID, reg.Camp.Name, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, "", fmt.Errorf("resolve access code: %w", err)
	}

	var camp models.Camp
	err = s.db.WithContext(ctx).Where("access_code = ?", code).First(&camp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("unknown access code presented")
			return 0, "", ErrCodeNotFound
		}
		return 0, "", fmt.Errorf("resolve access code: %w", err)
	}
	return camp.ID, camp.Name, nil
}
