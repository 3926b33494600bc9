package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tabor-plzen/camp-api/internal/config"
	"github.com/tabor-plzen/camp-api/internal/models"
)

func newTestHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.APIKey{}))
	cfg := &config.Config{JWTSecret: "test-secret"}
	return NewAuthHandler(cfg, db, zap.NewNop()), db
}

func cookieInput(token string) AuthInput {
	return AuthInput{Cookie: CookieName + "=" + token}
}

func TestRegisterLocal(t *testing.T) {
	h, db := newTestHandler(t)
	ctx := context.Background()

	user, err := h.RegisterLocal(ctx, "jan@example.com", "s3cret", "Jan Novak")
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, user.Role)
	assert.NotEqual(t, "s3cret", user.PasswordHash, "password must be stored hashed")

	_, err = h.RegisterLocal(ctx, "jan@example.com", "other", "Someone Else")
	assert.ErrorIs(t, err, ErrEmailTaken)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthenticateLocal(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	created, err := h.RegisterLocal(ctx, "jan@example.com", "s3cret", "Jan")
	require.NoError(t, err)

	user, err := h.AuthenticateLocal(ctx, "jan@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = h.AuthenticateLocal(ctx, "jan@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = h.AuthenticateLocal(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateLocalGoogleOnlyAccount(t *testing.T) {
	h, db := newTestHandler(t)
	googleID := "g-123"
	require.NoError(t, db.Create(&models.User{Email: "g@example.com", GoogleID: &googleID, Role: models.RoleParent}).Error)

	_, err := h.AuthenticateLocal(context.Background(), "g@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthorizeRoundtrip(t *testing.T) {
	h, db := newTestHandler(t)
	user := models.User{Email: "jan@example.com", Role: models.RoleParent}
	require.NoError(t, db.Create(&user).Error)

	token, err := h.GenerateToken(user.ID)
	require.NoError(t, err)

	userID, err := h.Authorize(context.Background(), cookieInput(token))
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// Other cookies around the session cookie must not confuse parsing.
	userID, err = h.Authorize(context.Background(), AuthInput{Cookie: "theme=dark; " + CookieName + "=" + token + "; lang=cs"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAuthorizeRejectsBadTokens(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	_, err := h.Authorize(ctx, AuthInput{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = h.Authorize(ctx, cookieInput("not-a-jwt"))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Token signed with a different secret.
	claims := jwt.MapClaims{"user_id": 1, "exp": time.Now().Add(time.Hour).Unix()}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = h.Authorize(ctx, cookieInput(forged))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Expired token.
	claims = jwt.MapClaims{"user_id": 1, "exp": time.Now().Add(-time.Hour).Unix()}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = h.Authorize(ctx, cookieInput(expired))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthorizeAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	ctx := context.Background()

	parent := models.User{Email: "parent@example.com", Role: models.RoleParent}
	admin := models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&parent).Error)
	require.NoError(t, db.Create(&admin).Error)

	parentToken, err := h.GenerateToken(parent.ID)
	require.NoError(t, err)
	adminToken, err := h.GenerateToken(admin.ID)
	require.NoError(t, err)

	_, err = h.AuthorizeAdmin(ctx, cookieInput(parentToken))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	userID, err := h.AuthorizeAdmin(ctx, cookieInput(adminToken))
	require.NoError(t, err)
	assert.Equal(t, admin.ID, userID)
}

func TestAuthorizeAPIKey(t *testing.T) {
	h, db := newTestHandler(t)
	ctx := context.Background()

	admin := models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)
	key := models.APIKey{Key: "staff-key-1", UserID: admin.ID, Name: "uploader"}
	require.NoError(t, db.Create(&key).Error)

	// A staff key alone authorizes admin operations and stamps usage.
	userID, err := h.AuthorizeAdmin(ctx, AuthInput{APIKey: "staff-key-1"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, userID)

	var got models.APIKey
	require.NoError(t, db.First(&got, key.ID).Error)
	assert.NotNil(t, got.LastUsedAt)

	// Expired keys are rejected.
	past := time.Now().Add(-time.Hour)
	expired := models.APIKey{Key: "staff-key-2", UserID: admin.ID, Name: "old", ExpiresAt: &past}
	require.NoError(t, db.Create(&expired).Error)
	_, err = h.AuthorizeAdmin(ctx, AuthInput{APIKey: "staff-key-2"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Parent-minted keys do not pass the role gate.
	parent := models.User{Email: "parent@example.com", Role: models.RoleParent}
	require.NoError(t, db.Create(&parent).Error)
	parentKey := models.APIKey{Key: "parent-key", UserID: parent.ID, Name: "nope"}
	require.NoError(t, db.Create(&parentKey).Error)
	_, err = h.AuthorizeAdmin(ctx, AuthInput{APIKey: "parent-key"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// An unknown key falls back to a valid cookie session.
	token, err := h.GenerateToken(admin.ID)
	require.NoError(t, err)
	userID, err = h.Authorize(ctx, AuthInput{APIKey: "no-such-key", Cookie: CookieName + "=" + token})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, userID)
}

func TestOptionalUserID(t *testing.T) {
	h, db := newTestHandler(t)
	ctx := context.Background()

	assert.Nil(t, h.OptionalUserID(ctx, AuthInput{}), "guests carry no session")
	assert.Nil(t, h.OptionalUserID(ctx, cookieInput("garbage")))

	user := models.User{Email: "jan@example.com", Role: models.RoleParent}
	require.NoError(t, db.Create(&user).Error)
	token, err := h.GenerateToken(user.ID)
	require.NoError(t, err)

	got := h.OptionalUserID(ctx, cookieInput(token))
	require.NotNil(t, got)
	assert.Equal(t, user.ID, *got)
}
