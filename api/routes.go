package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/CharlesManalo/CommunitySafe/internal/config"
	"github.com/CharlesManalo/CommunitySafe/internal/hazard"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, svc hazard.Service) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(svc, store, cfg.JWTSecret, cfg.TokenDuration)
	pagesHandler := NewPagesHandler(svc)
	reportsHandler, err := NewReportsHandler(svc)
	if err != nil {
		return nil, err
	}

	// Open endpoints
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/", pagesHandler.Index).Methods("GET")
	r.HandleFunc("/history", pagesHandler.History).Methods("GET")
	r.HandleFunc("/api/report", reportsHandler.SubmitReport).Methods("POST")
	r.HandleFunc("/admin/login", authHandler.LoginPage).Methods("GET")
	r.HandleFunc("/admin/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/admin/logout", authHandler.Logout).Methods("GET")

	// Admin-gated routes
	dashboard := r.PathPrefix("/admin/dashboard").Subrouter()
	dashboard.Use(authHandler.RequireAdmin(false))
	dashboard.HandleFunc("", pagesHandler.Dashboard).Methods("GET")

	resolve := r.PathPrefix("/admin/resolve").Subrouter()
	resolve.Use(authHandler.RequireAdmin(true))
	resolve.HandleFunc("/{report_id}", reportsHandler.ResolveReport).Methods("POST")

	// Uploaded photos
	r.PathPrefix("/uploads/before/").Handler(http.StripPrefix("/uploads/before/", http.FileServer(http.Dir(cfg.UploadDirBefore))))
	r.PathPrefix("/uploads/after/").Handler(http.StripPrefix("/uploads/after/", http.FileServer(http.Dir(cfg.UploadDirAfter))))

	return r, nil
}
