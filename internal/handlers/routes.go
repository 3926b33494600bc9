package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tabor-plzen/camp-api/internal/auth"
)

type Handlers struct {
	Account      *AccountHandler
	Camp         *CampHandler
	Registration *RegistrationHandler
	Payment      *PaymentHandler
	Gallery      *GalleryHandler
	Admin        *AdminHandler
	APIKey       *APIKeyHandler
}

func RegisterRoutes(r *chi.Mux, authHandler *auth.AuthHandler, h Handlers) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authHandler.SessionRefresh)

	// Initialize Huma API
	config := huma.DefaultConfig("Camp Registration API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"staffKey": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/google/login", authHandler.HandleGoogleLogin)
	r.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	huma.Post(api, "/auth/signup", h.Account.HandleSignup)
	huma.Post(api, "/auth/login", h.Account.HandleLogin)
	huma.Get(api, "/me", h.Account.HandleMe, secured)

	// Camp catalogue
	huma.Get(api, "/camps", h.Camp.HandleList)
	huma.Get(api, "/camps/popular", h.Camp.HandlePopular)
	huma.Get(api, "/camps/{id}", h.Camp.HandleGet)

	// Registration lifecycle. Creation is open to guests; the access code
	// in the response is the bearer credential for everything after.
	huma.Post(api, "/registrations", h.Registration.HandleCreate)
	huma.Get(api, "/registrations/{code}", h.Registration.HandleGet)
	huma.Post(api, "/registrations/{code}/cancel", h.Registration.HandleCancel)
	huma.Get(api, "/my/registrations", h.Registration.HandleListMine, secured)

	// Payments
	huma.Post(api, "/payments/card", h.Payment.HandleCardPayment)
	huma.Post(api, "/payments/bank-transfer", h.Payment.HandleBankTransfer)

	// Guest gallery, keyed by access code
	huma.Get(api, "/gallery/{code}", h.Gallery.HandleGallery)

	// Admin operations
	huma.Post(api, "/admin/camps", h.Admin.HandleCreateCamp, secured)
	huma.Put(api, "/admin/camps/{id}", h.Admin.HandleUpdateCamp, secured)
	huma.Delete(api, "/admin/camps/{id}", h.Admin.HandleDeleteCamp, secured)
	huma.Put(api, "/admin/camps/{id}/capacity", h.Admin.HandleUpdateCapacity, secured)
	huma.Put(api, "/admin/camps/{id}/price", h.Admin.HandleUpdatePrice, secured)
	huma.Post(api, "/admin/camps/{id}/duplicate", h.Admin.HandleDuplicateCamp, secured)
	huma.Post(api, "/admin/camps/{id}/photos", h.Admin.HandleUploadPhoto, secured)
	huma.Post(api, "/admin/camps/{id}/updates", h.Admin.HandleCreateUpdate, secured)
	huma.Delete(api, "/admin/updates/{updateId}", h.Admin.HandleDeleteUpdate, secured)

	// Staff API keys
	huma.Post(api, "/admin/api-keys", h.APIKey.HandleCreate, secured)
	huma.Get(api, "/admin/api-keys", h.APIKey.HandleList, secured)
	huma.Delete(api, "/admin/api-keys/{id}", h.APIKey.HandleDelete, secured)
}

func secured(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}, {"staffKey": {}}}
}
