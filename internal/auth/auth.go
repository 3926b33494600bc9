// Package auth handles parent and admin sessions: local email+password
// accounts, Google sign-in and the JWT session cookie both result in.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/tabor-plzen/camp-api/internal/config"
	"github.com/tabor-plzen/camp-api/internal/models"
)

const (
	GoogleAuthorizeEndpoint = "https://accounts.google.com/o/oauth2/auth"
	GoogleTokenEndpoint     = "https://oauth2.googleapis.com/token"
	GoogleUserInfoAPI       = "https://www.googleapis.com/oauth2/v2/userinfo"

	TokenDuration = 24 * time.Hour
	CookieName    = "auth_token"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailTaken         = errors.New("auth: email already registered")
)

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config
	logger      *zap.Logger
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  GoogleAuthorizeEndpoint,
				TokenURL: GoogleTokenEndpoint,
			},
		},
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterLocal creates a parent account with a bcrypt-hashed password.
func (h *AuthHandler) RegisterLocal(ctx context.Context, email, password, name string) (*models.User, error) {
	var count int64
	if err := h.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         models.RoleParent,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// AuthenticateLocal checks an email+password pair.
func (h *AuthHandler) AuthenticateLocal(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	url := h.oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)
	resp, err := client.Get(GoogleUserInfoAPI)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var googleUser struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	var user models.User
	err = h.db.Where("google_id = ?", googleUser.ID).Or("email = ?", googleUser.Email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	user.Email = googleUser.Email
	user.Name = googleUser.Name
	user.GoogleID = &googleUser.ID
	if user.Role == "" {
		user.Role = models.RoleParent
	}
	if err := h.db.Save(&user).Error; err != nil {
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	h.SetSessionCookie(w, jwtToken)
	if h.cfg.FrontendURL != "" {
		http.Redirect(w, r, h.cfg.FrontendURL, http.StatusTemporaryRedirect)
		return
	}
	fmt.Fprintf(w, "Welcome %s! You are logged in.", user.Name)
}

func (h *AuthHandler) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	})
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// AuthInput is embedded by operations that need a caller identity: either
// the session cookie or a staff device's API key.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie" required:"false"`
	APIKey string `header:"X-API-KEY" doc:"Staff device API key" required:"false"`
}

// Authorize resolves the user id behind the request credentials. An API key
// wins over the cookie when both are present and valid.
func (h *AuthHandler) Authorize(ctx context.Context, in AuthInput) (uint, error) {
	if in.APIKey != "" {
		user, err := h.userForKey(ctx, in.APIKey)
		if err == nil {
			return user.ID, nil
		}
		if !errors.Is(err, ErrInvalidCredentials) {
			return 0, err
		}
	}
	token := cookieValue(in.Cookie, CookieName)
	if token == "" {
		return 0, ErrInvalidCredentials
	}
	return h.parseToken(token)
}

// User loads the account behind the request credentials.
func (h *AuthHandler) User(ctx context.Context, in AuthInput) (*models.User, error) {
	userID, err := h.Authorize(ctx, in)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return &user, nil
}

// AuthorizeAdmin is Authorize plus a role check. Staff device keys inherit
// the role of the admin who minted them.
func (h *AuthHandler) AuthorizeAdmin(ctx context.Context, in AuthInput) (uint, error) {
	user, err := h.User(ctx, in)
	if err != nil {
		return 0, err
	}
	if user.Role != models.RoleAdmin {
		return 0, ErrInvalidCredentials
	}
	return user.ID, nil
}

// OptionalUserID returns the user id when valid credentials are present, nil
// otherwise. Guest registration relies on this.
func (h *AuthHandler) OptionalUserID(ctx context.Context, in AuthInput) *uint {
	userID, err := h.Authorize(ctx, in)
	if err != nil {
		return nil
	}
	return &userID
}

// userForKey resolves a staff API key, enforcing expiry and stamping usage.
func (h *AuthHandler) userForKey(ctx context.Context, key string) (*models.User, error) {
	var keyModel models.APIKey
	if err := h.db.WithContext(ctx).Where("key = ?", key).First(&keyModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load api key: %w", err)
	}
	if keyModel.ExpiresAt != nil && time.Now().After(*keyModel.ExpiresAt) {
		return nil, ErrInvalidCredentials
	}

	h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", time.Now())

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, keyModel.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user %d: %w", keyModel.UserID, err)
	}
	return &user, nil
}

func (h *AuthHandler) parseToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidCredentials
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidCredentials
	}
	return uint(userIDFloat), nil
}

func cookieValue(header, name string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, name+"="); ok {
			return v
		}
	}
	return ""
}
