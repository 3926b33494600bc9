package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/tabor-plzen/camp-api/internal/camps"
	"github.com/tabor-plzen/camp-api/internal/models"
)

type CampHandler struct {
	camps  *camps.Service
	logger *zap.Logger
}

func NewCampHandler(service *camps.Service, logger *zap.Logger) *CampHandler {
	return &CampHandler{camps: service, logger: logger}
}

type CampResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	Type             string    `json:"type"`
	Price            int       `json:"price"`
	Capacity         int       `json:"capacity"`
	AvailableSpots   int       `json:"available_spots"`
	AgeGroup         string    `json:"age_group"`
	ShortDescription string    `json:"short_description"`
	Description      string    `json:"description"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Images           []string  `json:"images"`
	Activities       []string  `json:"activities"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

func toCampResponse(c models.Camp) CampResponse {
	return CampResponse{
		ID:               c.ID,
		Name:             c.Name,
		Location:         c.Location,
		Type:             c.Type,
		Price:            c.Price,
		Capacity:         c.Capacity,
		AvailableSpots:   c.AvailableSpots,
		AgeGroup:         c.AgeGroup,
		ShortDescription: c.ShortDescription,
		Description:      c.Description,
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		Images:           c.ImageList(),
		Activities:       c.ActivityList(),
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
	}
}

type ListCampsInput struct {
	Type     string `query:"type" doc:"Filter by camp type" required:"false"`
	AgeGroup string `query:"age_group" doc:"Filter by age bracket (6-9, 10-13, 14-17)" required:"false"`
	MaxPrice int    `query:"max_price" doc:"Maximum price in CZK" required:"false"`
}

type ListCampsOutput struct {
	Body []CampResponse
}

func (h *CampHandler) HandleList(ctx context.Context, input *ListCampsInput) (*ListCampsOutput, error) {
	list, err := h.camps.List(ctx, camps.Filter{
		Type:     input.Type,
		AgeGroup: input.AgeGroup,
		MaxPrice: input.MaxPrice,
	})
	if err != nil {
		h.logger.Error("failed to list camps", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}

	out := &ListCampsOutput{Body: make([]CampResponse, 0, len(list))}
	for _, c := range list {
		out.Body = append(out.Body, toCampResponse(c))
	}
	return out, nil
}

type PopularCampsOutput struct {
	Body []CampResponse
}

func (h *CampHandler) HandlePopular(ctx context.Context, _ *struct{}) (*PopularCampsOutput, error) {
	list, err := h.camps.Popular(ctx)
	if err != nil {
		h.logger.Error("failed to list popular camps", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}

	out := &PopularCampsOutput{Body: make([]CampResponse, 0, len(list))}
	for _, c := range list {
		out.Body = append(out.Body, toCampResponse(c))
	}
	return out, nil
}

type GetCampInput struct {
	ID uint `path:"id"`
}

type GetCampOutput struct {
	Body CampResponse
}

func (h *CampHandler) HandleGet(ctx context.Context, input *GetCampInput) (*GetCampOutput, error) {
	camp, err := h.camps.Get(ctx, input.ID)
	if err != nil {
		if errors.Is(err, camps.ErrNotFound) {
			return nil, huma.Error404NotFound("Camp not found")
		}
		h.logger.Error("failed to get camp", zap.Uint("camp_id", input.ID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return &GetCampOutput{Body: toCampResponse(*camp)}, nil
}
