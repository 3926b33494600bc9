package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/tabor-plzen/camp-api/internal/auth"
	"github.com/tabor-plzen/camp-api/internal/camps"
	"github.com/tabor-plzen/camp-api/internal/models"
	"github.com/tabor-plzen/camp-api/internal/timeline"
)

// AdminHandler groups the staff-only camp, photo and live-update management
// operations.
type AdminHandler struct {
	camps       *camps.Service
	timeline    *timeline.Service
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewAdminHandler(campService *camps.Service, timelineService *timeline.Service, authHandler *auth.AuthHandler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{camps: campService, timeline: timelineService, authHandler: authHandler, logger: logger}
}

type CampFields struct {
	Name             string    `json:"name" minLength:"1" maxLength:"200"`
	Location         string    `json:"location" minLength:"1" maxLength:"200"`
	Type             string    `json:"type" minLength:"1" maxLength:"50"`
	AgeGroup         string    `json:"age_group" maxLength:"20"`
	ShortDescription string    `json:"short_description" maxLength:"500" required:"false"`
	Description      string    `json:"description" maxLength:"2000" required:"false"`
	Latitude         float64   `json:"latitude" required:"false"`
	Longitude        float64   `json:"longitude" required:"false"`
	Images           []string  `json:"images" required:"false"`
	Activities       []string  `json:"activities" required:"false"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

type CreateCampInput struct {
	auth.AuthInput
	Body struct {
		CampFields
		Price    int `json:"price" minimum:"0"`
		Capacity int `json:"capacity" minimum:"0"`
	}
}

type CreateCampOutput struct {
	Body CampResponse
}

func (h *AdminHandler) HandleCreateCamp(ctx context.Context, input *CreateCampInput) (*CreateCampOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	camp := models.Camp{
		Name:             input.Body.Name,
		Location:         input.Body.Location,
		Type:             input.Body.Type,
		Price:            input.Body.Price,
		Capacity:         input.Body.Capacity,
		AgeGroup:         input.Body.AgeGroup,
		ShortDescription: input.Body.ShortDescription,
		Description:      input.Body.Description,
		Latitude:         input.Body.Latitude,
		Longitude:        input.Body.Longitude,
		Images:           models.JoinList(input.Body.Images),
		Activities:       models.JoinList(input.Body.Activities),
		StartDate:        input.Body.StartDate,
		EndDate:          input.Body.EndDate,
	}
	if err := h.camps.Create(ctx, &camp); err != nil {
		h.logger.Error("failed to create camp", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return &CreateCampOutput{Body: toCampResponse(camp)}, nil
}

type UpdateCampInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body CampFields
}

func (h *AdminHandler) HandleUpdateCamp(ctx context.Context, input *UpdateCampInput) (*struct{}, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	camp := models.Camp{
		Name:             input.Body.Name,
		Location:         input.Body.Location,
		Type:             input.Body.Type,
		AgeGroup:         input.Body.AgeGroup,
		ShortDescription: input.Body.ShortDescription,
		Description:      input.Body.Description,
		Latitude:         input.Body.Latitude,
		Longitude:        input.Body.Longitude,
		Images:           models.JoinList(input.Body.Images),
		Activities:       models.JoinList(input.Body.Activities),
		StartDate:        input.Body.StartDate,
		EndDate:          input.Body.EndDate,
	}
	camp.ID = input.ID
	if err := h.camps.Update(ctx, &camp); err != nil {
		if errors.Is(err, camps.ErrNotFound) {
			return nil, huma.Error404NotFound("Camp not found")
		}
		h.logger.Error("failed to update camp", zap.Uint("camp_id", input.ID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return nil, nil
}

type DeleteCampInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *AdminHandler) HandleDeleteCamp(ctx context.Context, input *DeleteCampInput) (*struct{}, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.camps.Delete(ctx, input.ID); err != nil {
		if errors.Is(err, camps.ErrNotFound) {
			return nil, huma.Error404NotFound("Camp not found")
		}
		h.logger.Error("failed to delete camp", zap.Uint("camp_id", input.ID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return nil, nil
}

type UpdateCapacityInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Capacity int `json:"capacity" minimum:"0"`
	}
}

func (h *AdminHandler) HandleUpdateCapacity(ctx context.Context, input *UpdateCapacityInput) (*struct{}, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.camps.UpdateCapacity(ctx, input.ID, input.Body.Capacity); err != nil {
		if errors.Is(err, camps.ErrNotFound) {
			return nil, huma.Error404NotFound("Camp not found")
		}
		h.logger.Error("failed to update capacity", zap.Uint("camp_id", input.ID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return nil, nil
}

type UpdatePriceInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Price int `json:"price" minimum:"0"`
	}
}

func (h *AdminHandler) HandleUpdatePrice(ctx context.Context, input *UpdatePriceInput) (*struct{}, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.camps.UpdatePrice(ctx, input.ID, input.Body.Price); err != nil {
		if errors.Is(err, camps.ErrNotFound) {
			return nil, huma.Error404NotFound("Camp not found")
		}
		h.logger.Error("failed to update price", zap.Uint("camp_id", input.ID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return nil, nil
}

type DuplicateCampInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
	}
}

type DuplicateCampOutput struct {
	Body CampResponse
}

func (h *AdminHandler) HandleDuplicateCamp(ctx context.Context, input *DuplicateCampInput) (*DuplicateCampOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	clone, err := h.camps.Duplicate(ctx, input.ID, input.Body.StartDate, input.Body.EndDate)
	if err != nil {
		if errors.Is(err, camps.ErrNotFound) {
			return nil, huma.Error404NotFound("Camp not found")
		}
		h.logger.Error("failed to duplicate camp", zap.Uint("camp_id", input.ID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return &DuplicateCampOutput{Body: toCampResponse(*clone)}, nil
}

type UploadPhotoInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		FileName    string `json:"file_name" minLength:"1" maxLength:"500"`
		Description string `json:"description" maxLength:"500" required:"false"`
	}
}

type UploadPhotoOutput struct {
	Body PhotoResponse
}

func (h *AdminHandler) HandleUploadPhoto(ctx context.Context, input *UploadPhotoInput) (*UploadPhotoOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	photo, err := h.timeline.UploadPhoto(ctx, input.ID, input.Body.FileName, input.Body.Description)
	if err != nil {
		h.logger.Error("failed to upload photo", zap.Uint("camp_id", input.ID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return &UploadPhotoOutput{Body: toPhotoResponse(*photo)}, nil
}

type CreateUpdateInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Title    string  `json:"title" minLength:"1" maxLength:"200"`
		Content  string  `json:"content" minLength:"1" maxLength:"2000"`
		PhotoURL *string `json:"photo_url" required:"false"`
	}
}

type CreateUpdateOutput struct {
	Body UpdateResponse
}

func (h *AdminHandler) HandleCreateUpdate(ctx context.Context, input *CreateUpdateInput) (*CreateUpdateOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	update := models.LiveUpdate{
		CampID:   input.ID,
		Title:    input.Body.Title,
		Content:  input.Body.Content,
		PhotoURL: input.Body.PhotoURL,
	}
	if err := h.timeline.CreateUpdate(ctx, &update); err != nil {
		h.logger.Error("failed to create update", zap.Uint("camp_id", input.ID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return &CreateUpdateOutput{Body: toUpdateResponse(update)}, nil
}

type DeleteUpdateInput struct {
	auth.AuthInput
	UpdateID uint `path:"updateId"`
}

func (h *AdminHandler) HandleDeleteUpdate(ctx context.Context, input *DeleteUpdateInput) (*struct{}, error) {
	if _, err := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.timeline.DeleteUpdate(ctx, input.UpdateID); err != nil {
		h.logger.Error("failed to delete update", zap.Uint("update_id", input.UpdateID), zap.Error(err))
		return nil, huma.Error404NotFound("Update not found")
	}
	return nil, nil
}
