package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/tabor-plzen/camp-api/internal/auth"
	"github.com/tabor-plzen/camp-api/internal/models"
	"github.com/tabor-plzen/camp-api/internal/registrations"
)

type RegistrationHandler struct {
	registrations *registrations.Service
	authHandler   *auth.AuthHandler
	logger        *zap.Logger
}

func NewRegistrationHandler(service *registrations.Service, authHandler *auth.AuthHandler, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{registrations: service, authHandler: authHandler, logger: logger}
}

type RegistrationRequest struct {
	auth.AuthInput
	Body struct {
		CampID                   uint      `json:"camp_id" doc:"Camp to register for"`
		ChildName                string    `json:"child_name" minLength:"1" maxLength:"100"`
		ChildSurname             string    `json:"child_surname" minLength:"1" maxLength:"100"`
		ChildBirthDate           time.Time `json:"child_birth_date"`
		ParentName               string    `json:"parent_name" minLength:"1" maxLength:"100"`
		ParentEmail              string    `json:"parent_email" format:"email"`
		ParentPhone              string    `json:"parent_phone" minLength:"1" maxLength:"20"`
		SpecialRequirements      string    `json:"special_requirements" maxLength:"1000" required:"false"`
		HasMedicalIssues         bool      `json:"has_medical_issues" required:"false"`
		MedicalIssuesDescription string    `json:"medical_issues_description" maxLength:"1000" required:"false"`
	}
}

type RegistrationResponse struct {
	ID           uint                      `json:"id"`
	CampID       uint                      `json:"camp_id"`
	CampName     string                    `json:"camp_name,omitempty"`
	ChildName    string                    `json:"child_name"`
	ChildSurname string                    `json:"child_surname"`
	AccessCode   string                    `json:"access_code"`
	Status       models.RegistrationStatus `json:"status"`
	RegisteredAt time.Time                 `json:"registered_at"`
}

func toRegistrationResponse(r models.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:           r.ID,
		CampID:       r.CampID,
		CampName:     r.Camp.Name,
		ChildName:    r.ChildName,
		ChildSurname: r.ChildSurname,
		AccessCode:   r.AccessCode,
		Status:       r.Status,
		RegisteredAt: r.RegisteredAt,
	}
}

type CreateRegistrationOutput struct {
	Body RegistrationResponse
}

func (h *RegistrationHandler) HandleCreate(ctx context.Context, input *RegistrationRequest) (*CreateRegistrationOutput, error) {
	// Guests may register without an account; a valid session links the
	// registration to it.
	userID := h.authHandler.OptionalUserID(ctx, input.AuthInput)

	reg, err := h.registrations.Create(ctx, registrations.CreateInput{
		CampID: input.Body.CampID,
		Child: models.ChildFields{
			ChildName:      input.Body.ChildName,
			ChildSurname:   input.Body.ChildSurname,
			ChildBirthDate: input.Body.ChildBirthDate,
		},
		Parent: models.ParentFields{
			ParentName:  input.Body.ParentName,
			ParentEmail: input.Body.ParentEmail,
			ParentPhone: input.Body.ParentPhone,
		},
		SpecialRequirements:      input.Body.SpecialRequirements,
		HasMedicalIssues:         input.Body.HasMedicalIssues,
		MedicalIssuesDescription: input.Body.MedicalIssuesDescription,
		UserID:                   userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, registrations.ErrCampNotFound):
			return nil, huma.Error404NotFound("Camp not found")
		case errors.Is(err, registrations.ErrCampFull):
			return nil, huma.Error409Conflict("Camp is full")
		case errors.Is(err, registrations.ErrDuplicate):
			return nil, huma.Error409Conflict("You are already registered for this camp")
		}
		h.logger.Error("failed to create registration", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}

	return &CreateRegistrationOutput{Body: toRegistrationResponse(*reg)}, nil
}

type GetRegistrationInput struct {
	Code string `path:"code" doc:"Registration access code"`
}

type GetRegistrationOutput struct {
	Body RegistrationResponse
}

func (h *RegistrationHandler) HandleGet(ctx context.Context, input *GetRegistrationInput) (*GetRegistrationOutput, error) {
	reg, err := h.registrations.GetByAccessCode(ctx, input.Code)
	if err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			return nil, huma.Error404NotFound("Registration not found")
		}
		h.logger.Error("failed to look up registration", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return &GetRegistrationOutput{Body: toRegistrationResponse(*reg)}, nil
}

type CancelRegistrationInput struct {
	auth.AuthInput
	Code string `path:"code" doc:"Registration access code"`
}

type CancelRegistrationOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *RegistrationHandler) HandleCancel(ctx context.Context, input *CancelRegistrationInput) (*CancelRegistrationOutput, error) {
	// Only admins may cancel a paid registration; that also refunds the
	// completed payment.
	_, adminErr := h.authHandler.AuthorizeAdmin(ctx, input.AuthInput)
	adminOverride := adminErr == nil

	err := h.registrations.Cancel(ctx, input.Code, adminOverride)
	if err != nil {
		switch {
		case errors.Is(err, registrations.ErrNotFound):
			return nil, huma.Error404NotFound("Registration not found")
		case errors.Is(err, registrations.ErrAlreadyCancelled):
			return nil, huma.Error409Conflict("Registration is already cancelled")
		case errors.Is(err, registrations.ErrPaidRegistration):
			return nil, huma.Error409Conflict("Paid registrations can only be cancelled by an administrator")
		}
		h.logger.Error("failed to cancel registration", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}

	res := &CancelRegistrationOutput{}
	res.Body.Message = "Registration cancelled"
	return res, nil
}

type MyRegistrationsInput struct {
	auth.AuthInput
}

type MyRegistrationsOutput struct {
	Body []RegistrationResponse
}

func (h *RegistrationHandler) HandleListMine(ctx context.Context, input *MyRegistrationsInput) (*MyRegistrationsOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	regs, err := h.registrations.ListByUser(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list registrations", zap.Uint("user_id", userID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}

	out := &MyRegistrationsOutput{Body: make([]RegistrationResponse, 0, len(regs))}
	for _, r := range regs {
		out.Body = append(out.Body, toRegistrationResponse(r))
	}
	return out, nil
}
