package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"morak/internal/models"
	"morak/internal/security"
)

// AuthHandler handles OAuth login, token refresh and logout
type AuthHandler struct {
	auth            AuthService
	providers       map[string]OAuthProvider
	redirectBaseURL string
	frontendURL     string
	logger          *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthService, providers []OAuthProvider, redirectBaseURL, frontendURL string, logger *zap.Logger) *AuthHandler {
	byName := make(map[string]OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	if frontendURL == "" {
		frontendURL = "/"
	}
	return &AuthHandler{
		auth:            auth,
		providers:       byName,
		redirectBaseURL: redirectBaseURL,
		frontendURL:     frontendURL,
		logger:          logger,
	}
}

// Refresh exchanges the refresh token cookie for a new token pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	pair, err := h.auth.Refresh(r.Context(), security.CookieValue(r, security.RefreshTokenCookie))
	if err != nil {
		h.clearTokenCookies(w, r)
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.setTokenCookies(w, r, pair)
	w.WriteHeader(http.StatusNoContent)
}

// Logout revokes the refresh token and clears both token cookies
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), security.CookieValue(r, security.RefreshTokenCookie)); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.clearTokenCookies(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, r *http.Request, pair *models.TokenPair) {
	http.SetCookie(w, security.CreateTokenCookie(r, security.AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(w, security.CreateTokenCookie(r, security.RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt))
}

func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, security.AccessTokenCookie))
	http.SetCookie(w, security.CreateDeleteCookie(r, security.RefreshTokenCookie))
}
