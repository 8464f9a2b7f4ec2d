package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"morak/internal/security"
	"morak/internal/service"
)

const (
	oauthProviderCookie = "oauth_provider"
	oauthCookieTTL      = 10 * time.Minute
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	EmailsURL   string
}

// NewGitHubProvider returns the GitHub provider for the given app credentials
func NewGitHubProvider(clientID, clientSecret string) OAuthProvider {
	return OAuthProvider{
		Name: "github",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		UserInfoURL: "https://api.github.com/user",
		EmailsURL:   "https://api.github.com/user/emails",
	}
}

func (p OAuthProvider) configured() bool {
	return p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

// StartOAuth initiates the OAuth flow for a provider
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	providerKey := chi.URLParam(r, "provider")
	provider, ok := h.providers[providerKey]
	if !ok || !provider.configured() {
		respondWithError(w, h.logger, http.StatusBadRequest, "OAuth provider not configured", "", nil)
		return
	}

	state := uuid.NewString()
	h.setTempCookie(w, r, security.OAuthStateCookie, state)
	h.setTempCookie(w, r, oauthProviderCookie, providerKey)

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	http.Redirect(w, r, config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// OAuthCallback handles the OAuth provider callback
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	providerKey := chi.URLParam(r, "provider")
	provider, ok := h.providers[providerKey]
	if !ok || !provider.configured() {
		respondWithError(w, h.logger, http.StatusBadRequest, "OAuth provider not configured", "", nil)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, h.logger, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	if expected := security.CookieValue(r, security.OAuthStateCookie); expected == "" || expected != state {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}
	if got := security.CookieValue(r, oauthProviderCookie); got != "" && got != providerKey {
		respondWithError(w, h.logger, http.StatusBadRequest, "OAuth provider mismatch", "", nil)
		return
	}

	h.clearTempCookie(w, r, security.OAuthStateCookie)
	h.clearTempCookie(w, r, oauthProviderCookie)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Failed to exchange OAuth code", "oauth exchange failed", err)
		return
	}

	profile, err := fetchGitHubUser(ctx, provider, token)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadGateway, "Failed to fetch OAuth profile", "oauth profile fetch failed", err)
		return
	}

	pair, _, err := h.auth.OAuthLogin(r.Context(), profile)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.setTokenCookies(w, r, pair)
	http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
}

func fetchGitHubUser(ctx context.Context, provider OAuthProvider, token *oauth2.Token) (service.OAuthProfile, error) {
	client := provider.Config.Client(ctx, token)

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(client, provider.UserInfoURL, &user); err != nil {
		return service.OAuthProfile{}, fmt.Errorf("failed to fetch GitHub user: %w", err)
	}
	if user.ID == 0 {
		return service.OAuthProfile{}, errors.New("GitHub user has no id")
	}

	email := user.Email
	if email == "" && provider.EmailsURL != "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(client, provider.EmailsURL, &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					email = e.Email
					break
				}
			}
		}
	}

	return service.OAuthProfile{
		Provider:       provider.Name,
		ProviderID:     strconv.FormatInt(user.ID, 10),
		Email:          email,
		Nickname:       user.Login,
		ProfilePicture: user.AvatarURL,
	}, nil
}

func getJSON(client *http.Client, url string, dst any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	baseURL := strings.TrimSpace(h.redirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/api/auth/%s/callback", strings.TrimRight(baseURL, "/"), providerKey)
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	cookie := security.CreateTokenCookie(r, name, value, time.Now().Add(oauthCookieTTL))
	cookie.MaxAge = int(oauthCookieTTL.Seconds())
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, security.CreateDeleteCookie(r, name))
}
