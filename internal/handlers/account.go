package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/tabor-plzen/camp-api/internal/auth"
)

type AccountHandler struct {
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewAccountHandler(authHandler *auth.AuthHandler, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{authHandler: authHandler, logger: logger}
}

type SignupInput struct {
	Body struct {
		Email    string `json:"email" format:"email"`
		Password string `json:"password" minLength:"6"`
		Name     string `json:"name" minLength:"1" maxLength:"100"`
	}
}

type SessionOutput struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
}

func (h *AccountHandler) HandleSignup(ctx context.Context, input *SignupInput) (*SessionOutput, error) {
	user, err := h.authHandler.RegisterLocal(ctx, input.Body.Email, input.Body.Password, input.Body.Name)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return nil, huma.Error409Conflict("Email is already registered")
		}
		h.logger.Error("signup failed", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return h.session(user.ID, user.Email, user.Name, user.Role)
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email"`
		Password string `json:"password" minLength:"1"`
	}
}

func (h *AccountHandler) HandleLogin(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
	user, err := h.authHandler.AuthenticateLocal(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, huma.Error401Unauthorized("Invalid email or password")
		}
		h.logger.Error("login failed", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	return h.session(user.ID, user.Email, user.Name, user.Role)
}

func (h *AccountHandler) session(userID uint, email, name, role string) (*SessionOutput, error) {
	token, err := h.authHandler.GenerateToken(userID)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong")
	}
	out := &SessionOutput{
		SetCookie: []http.Cookie{{
			Name:     auth.CookieName,
			Value:    token,
			HttpOnly: true,
			Path:     "/",
		}},
	}
	out.Body.Email = email
	out.Body.Name = name
	out.Body.Role = role
	return out, nil
}

type MeInput struct {
	auth.AuthInput
}

type MeOutput struct {
	Body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
}

func (h *AccountHandler) HandleMe(ctx context.Context, input *MeInput) (*MeOutput, error) {
	user, err := h.authHandler.User(ctx, input.AuthInput)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	out := &MeOutput{}
	out.Body.Email = user.Email
	out.Body.Name = user.Name
	out.Body.Role = user.Role
	return out, nil
}
