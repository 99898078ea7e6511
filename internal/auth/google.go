// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/classgo/classgo/internal/config"
)

// GoogleScopes are the Classroom and Drive scopes requested during account
// linking. They cover course browsing, submission management, and file
// uploads for turn-in.
var GoogleScopes = []string{
	"https://www.googleapis.com/auth/classroom.courses",
	"https://www.googleapis.com/auth/classroom.rosters",
	"https://www.googleapis.com/auth/classroom.coursework.students",
	"https://www.googleapis.com/auth/classroom.coursework.me",
	"https://www.googleapis.com/auth/classroom.announcements",
	"https://www.googleapis.com/auth/classroom.topics",
	"https://www.googleapis.com/auth/classroom.guardianlinks.students",
	"https://www.googleapis.com/auth/drive.file",
	"openid",
	"email",
	"profile",
}

// GoogleUserInfo is the subset of the OIDC userinfo response ClassGo stores.
type GoogleUserInfo struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GoogleLinker drives the OAuth authorization-code flow for linking a Google
// account to a ClassGo user.
type GoogleLinker struct {
	oauth *oauth2.Config

	// userInfoURL is overridable for tests.
	userInfoURL string
	httpClient  *http.Client
}

// NewGoogleLinker builds a linker from the Google OAuth client settings.
func NewGoogleLinker(cfg config.GoogleConfig) *GoogleLinker {
	return &GoogleLinker{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       GoogleScopes,
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		httpClient:  http.DefaultClient,
	}
}

// AuthCodeURL returns the consent-screen URL for the given CSRF state.
// Offline access is requested so a refresh token is issued; consent is forced
// so re-linking also returns a refresh token.
func (g *GoogleLinker) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for a token.
func (g *GoogleLinker) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// UserInfo fetches the Google profile for a freshly exchanged token.
func (g *GoogleLinker) UserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return &info, nil
}

// GenerateState returns a URL-safe random string for the OAuth state
// parameter.
func GenerateState() (string, error) {
	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
