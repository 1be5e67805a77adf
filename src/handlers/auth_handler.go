package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/linkpulse/backend/src/config"
	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/security"
	"github.com/username/linkpulse/backend/src/utils"
)

type contextKey string

const adminContextKey = contextKey("admin")

type AuthHandler struct {
	authService *security.AuthService
}

func NewAuthHandler(authService *security.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler authenticates the operator account configured via
// ADMIN_USERNAME / ADMIN_PASSWORD_HASH and issues a bearer token for the
// admin endpoints.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if config.Cfg.AdminPasswordHash == "" {
		logger.L.Warn("Login attempt while ADMIN_PASSWORD_HASH is unset")
		utils.SendJSONError(w, "admin login is not configured", http.StatusForbidden)
		return
	}
	if req.Username != config.Cfg.AdminUsername {
		utils.SendJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := h.authService.CompareHashAndPassword(config.Cfg.AdminPasswordHash, req.Password); err != nil {
		logger.L.Warn("Failed admin login attempt", "username", req.Username, "remoteAddr", r.RemoteAddr)
		utils.SendJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(req.Username)
	if err != nil {
		logger.L.Error("Failed to generate admin token", "error", err)
		utils.SendJSONError(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

// AuthMiddleware guards the admin endpoints with a bearer token check.
func (h *AuthHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			logger.L.Debug("AuthMiddleware: Token string empty", "path", r.URL.Path)
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		subject, err := h.authService.ValidateToken(tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), adminContextKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
