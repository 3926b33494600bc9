package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/tabor-plzen/camp-api/internal/accesscode"
	"github.com/tabor-plzen/camp-api/internal/models"
	"github.com/tabor-plzen/camp-api/internal/timeline"
)

type GalleryHandler struct {
	timeline *timeline.Service
	logger   *zap.Logger
}

func NewGalleryHandler(service *timeline.Service, logger *zap.Logger) *GalleryHandler {
	return &GalleryHandler{timeline: service, logger: logger}
}

type PhotoResponse struct {
	ID          uint      `json:"id"`
	FileName    string    `json:"file_name"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type UpdateResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type GalleryInput struct {
	Code string `path:"code" doc:"Registration or camp access code"`
}

type GalleryOutput struct {
	Body struct {
		CampName string           `json:"camp_name"`
		Photos   []PhotoResponse  `json:"photos"`
		Updates  []UpdateResponse `json:"updates"`
	}
}

// HandleGallery is the guest-facing photo/update page. The access code is
// the only credential; camp-level codes see photos and updates but never
// other families' registration details.
func (h *GalleryHandler) HandleGallery(ctx context.Context, input *GalleryInput) (*GalleryOutput, error) {
	if !accesscode.Valid(input.Code) {
		return nil, huma.Error404NotFound("Unknown access code")
	}

	gallery, err := h.timeline.GalleryByAccessCode(ctx, input.Code)
	if err != nil {
		if errors.Is(err, timeline.ErrCodeNotFound) {
			return nil, huma.Error404NotFound("Unknown access code")
		}
		h.logger.Error("failed to load gallery", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}

	out := &GalleryOutput{}
	out.Body.CampName = gallery.CampName
	out.Body.Photos = make([]PhotoResponse, 0, len(gallery.Photos))
	for _, p := range gallery.Photos {
		out.Body.Photos = append(out.Body.Photos, toPhotoResponse(p))
	}
	out.Body.Updates = make([]UpdateResponse, 0, len(gallery.Updates))
	for _, u := range gallery.Updates {
		out.Body.Updates = append(out.Body.Updates, toUpdateResponse(u))
	}
	return out, nil
}

func toPhotoResponse(p models.CampPhoto) PhotoResponse {
	return PhotoResponse{
		ID:          p.ID,
		FileName:    p.FileName,
		Description: p.Description,
		UploadedAt:  p.UploadedAt,
	}
}

func toUpdateResponse(u models.LiveUpdate) UpdateResponse {
	return UpdateResponse{
		ID:        u.ID,
		Title:     u.Title,
		Content:   u.Content,
		PhotoURL:  u.PhotoURL,
		CreatedAt: u.CreatedAt,
	}
}
