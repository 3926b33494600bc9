package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tabor-plzen/camp-api/internal/accesscode"
	"github.com/tabor-plzen/camp-api/internal/auth"
	"github.com/tabor-plzen/camp-api/internal/config"
	"github.com/tabor-plzen/camp-api/internal/models"
	"github.com/tabor-plzen/camp-api/internal/registrations"
)

func newRegistrationHandler(t *testing.T) (*RegistrationHandler, *auth.AuthHandler, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Camp{}, &models.Registration{},
		&models.RegistrationHistory{}, &models.Payment{},
	))
	authHandler := auth.NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db, zap.NewNop())
	svc := registrations.NewService(db, accesscode.NewGenerator(db), nil, zap.NewNop())
	return NewRegistrationHandler(svc, authHandler, zap.NewNop()), authHandler, db
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected a status error, got %v", err)
	return se.GetStatus()
}

func createRequest(campID uint, cookie string) *RegistrationRequest {
	req := &RegistrationRequest{}
	req.Cookie = cookie
	req.Body.CampID = campID
	req.Body.ChildName = "Anna"
	req.Body.ChildSurname = "Novakova"
	req.Body.ParentName = "Jan Novak"
	req.Body.ParentEmail = "jan@example.com"
	req.Body.ParentPhone = "+420123456789"
	return req
}

func TestHandleCreate(t *testing.T) {
	h, _, db := newRegistrationHandler(t)
	camp := models.Camp{Name: "Adventure Camp", Price: 5900, Capacity: 10, AvailableSpots: 10}
	require.NoError(t, db.Create(&camp).Error)

	out, err := h.HandleCreate(context.Background(), createRequest(camp.ID, ""))
	require.NoError(t, err)

	assert.Equal(t, camp.ID, out.Body.CampID)
	assert.Equal(t, "Adventure Camp", out.Body.CampName)
	assert.Equal(t, models.RegistrationPending, out.Body.Status)
	assert.Len(t, out.Body.AccessCode, 8)
}

func TestHandleCreateLinksSession(t *testing.T) {
	h, authHandler, db := newRegistrationHandler(t)
	camp := models.Camp{Name: "c", Capacity: 10, AvailableSpots: 10}
	require.NoError(t, db.Create(&camp).Error)
	user := models.User{Email: "jan@example.com", Role: models.RoleParent}
	require.NoError(t, db.Create(&user).Error)
	token, err := authHandler.GenerateToken(user.ID)
	require.NoError(t, err)

	out, err := h.HandleCreate(context.Background(), createRequest(camp.ID, auth.CookieName+"="+token))
	require.NoError(t, err)

	var reg models.Registration
	require.NoError(t, db.First(&reg, out.Body.ID).Error)
	require.NotNil(t, reg.UserID)
	assert.Equal(t, user.ID, *reg.UserID)
}

func TestHandleCreateErrors(t *testing.T) {
	h, _, db := newRegistrationHandler(t)

	_, err := h.HandleCreate(context.Background(), createRequest(999, ""))
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	full := models.Camp{Name: "full", Capacity: 5, AvailableSpots: 0}
	require.NoError(t, db.Create(&full).Error)
	_, err = h.HandleCreate(context.Background(), createRequest(full.ID, ""))
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestHandleGet(t *testing.T) {
	h, _, db := newRegistrationHandler(t)
	camp := models.Camp{Name: "c", Capacity: 10, AvailableSpots: 10}
	require.NoError(t, db.Create(&camp).Error)

	created, err := h.HandleCreate(context.Background(), createRequest(camp.ID, ""))
	require.NoError(t, err)

	out, err := h.HandleGet(context.Background(), &GetRegistrationInput{Code: created.Body.AccessCode})
	require.NoError(t, err)
	assert.Equal(t, created.Body.ID, out.Body.ID)

	_, err = h.HandleGet(context.Background(), &GetRegistrationInput{Code: "NOPE0000"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestHandleCancel(t *testing.T) {
	h, _, db := newRegistrationHandler(t)
	camp := models.Camp{Name: "c", Capacity: 10, AvailableSpots: 10}
	require.NoError(t, db.Create(&camp).Error)

	created, err := h.HandleCreate(context.Background(), createRequest(camp.ID, ""))
	require.NoError(t, err)

	out, err := h.HandleCancel(context.Background(), &CancelRegistrationInput{Code: created.Body.AccessCode})
	require.NoError(t, err)
	assert.Equal(t, "Registration cancelled", out.Body.Message)

	// Second attempt conflicts.
	_, err = h.HandleCancel(context.Background(), &CancelRegistrationInput{Code: created.Body.AccessCode})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestHandleCancelPaid(t *testing.T) {
	h, authHandler, db := newRegistrationHandler(t)
	camp := models.Camp{Name: "c", Capacity: 10, AvailableSpots: 10}
	require.NoError(t, db.Create(&camp).Error)

	created, err := h.HandleCreate(context.Background(), createRequest(camp.ID, ""))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Registration{}).
		Where("id = ?", created.Body.ID).
		Update("status", models.RegistrationPaid).Error)

	// A guest cannot cancel a paid registration.
	_, err = h.HandleCancel(context.Background(), &CancelRegistrationInput{Code: created.Body.AccessCode})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	// An admin session can.
	admin := models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)
	token, err := authHandler.GenerateToken(admin.ID)
	require.NoError(t, err)

	input := &CancelRegistrationInput{Code: created.Body.AccessCode}
	input.Cookie = auth.CookieName + "=" + token
	_, err = h.HandleCancel(context.Background(), input)
	require.NoError(t, err)
}

func TestHandleListMine(t *testing.T) {
	h, authHandler, db := newRegistrationHandler(t)
	camp := models.Camp{Name: "c", Capacity: 10, AvailableSpots: 10}
	require.NoError(t, db.Create(&camp).Error)
	user := models.User{Email: "jan@example.com", Role: models.RoleParent}
	require.NoError(t, db.Create(&user).Error)
	token, err := authHandler.GenerateToken(user.ID)
	require.NoError(t, err)

	_, err = h.HandleCreate(context.Background(), createRequest(camp.ID, auth.CookieName+"="+token))
	require.NoError(t, err)
	// A guest registration must not show up in the user's list.
	_, err = h.HandleCreate(context.Background(), createRequest(camp.ID, ""))
	require.NoError(t, err)

	input := &MyRegistrationsInput{}
	input.Cookie = auth.CookieName + "=" + token
	out, err := h.HandleListMine(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, out.Body, 1)

	_, err = h.HandleListMine(context.Background(), &MyRegistrationsInput{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}
