package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/CharlesManalo/CommunitySafe/internal/hazard"
)

const (
	sessionName        = "communitysafe_session"
	sessionKeyLoggedIn = "admin_logged_in"
	sessionKeyUsername = "admin_username"
)

// AuthHandler owns the admin login flow. Browsers get a signed session
// cookie; API clients posting JSON get a short-lived bearer token instead.
type AuthHandler struct {
	svc           hazard.Service
	store         *sessions.CookieStore
	jwtSecret     string
	tokenDuration time.Duration
}

func NewAuthHandler(svc hazard.Service, store *sessions.CookieStore, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, store: store, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, sessionName)

	var flashes []string
	for _, f := range session.Flashes() {
		if s, ok := f.(string); ok {
			flashes = append(flashes, s)
		}
	}
	// reading flashes mutates the session; persist the removal
	_ = session.Save(r, w)

	renderPage(w, "admin_login.html", map[string]any{"Flashes": flashes})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		h.loginJSON(w, r)
		return
	}
	h.loginForm(w, r)
}

func (h *AuthHandler) loginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	session, _ := h.store.Get(r, sessionName)

	admin, err := h.svc.Authenticate(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, hazard.ErrInvalidCredentials) {
			logger.Error("login", slog.Any("err", err))
		}
		// same message for unknown user and wrong password
		session.AddFlash("Invalid credentials")
		_ = session.Save(r, w)
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	session.Values[sessionKeyLoggedIn] = true
	session.Values[sessionKeyUsername] = admin.Username
	if err := session.Save(r, w); err != nil {
		logger.Error("save session", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) loginJSON(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{"error": "Invalid request"}, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, map[string]any{"error": "Missing credentials"}, http.StatusBadRequest)
		return
	}

	admin, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, hazard.ErrInvalidCredentials) {
			logger.Error("login", slog.Any("err", err))
		}
		writeJSON(w, map[string]any{"error": "Invalid credentials"}, http.StatusUnauthorized)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": admin.Username,
		"exp":      time.Now().Add(h.tokenDuration).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		logger.Error("sign token", slog.Any("err", err))
		writeJSON(w, map[string]any{"error": "Internal server error"}, http.StatusInternalServerError)
		return
	}

	writeJSON(w, tokenResponse{Token: tokenStr}, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)

	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// RequireAdmin gates a subrouter behind admin authentication. A request
// passes with either a logged-in session cookie or a valid bearer token;
// the admin username lands in the request context either way. API routes
// answer 401 JSON, page routes redirect to the login form.
func (h *AuthHandler) RequireAdmin(apiRoute bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username, ok := h.sessionUser(r); ok {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxAdminUser, username)))
				return
			}
			if username, ok := h.bearerUser(r); ok {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxAdminUser, username)))
				return
			}

			if apiRoute {
				writeJSON(w, map[string]any{"error": "Unauthorized"}, http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		})
	}
}

func (h *AuthHandler) sessionUser(r *http.Request) (string, bool) {
	session, err := h.store.Get(r, sessionName)
	if err != nil {
		return "", false
	}
	loggedIn, _ := session.Values[sessionKeyLoggedIn].(bool)
	if !loggedIn {
		return "", false
	}
	username, _ := session.Values[sessionKeyUsername].(string)
	return username, username != ""
}

func (h *AuthHandler) bearerUser(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || tokenString == "" {
		return "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	username, _ := claims["username"].(string)
	return username, username != ""
}
