package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/swirlhq/aio-assistant/internal/config"
	"github.com/swirlhq/aio-assistant/internal/domain"
)

const (
	authEndpoint  = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenEndpoint = "https://oauth2.googleapis.com/token"
)

// Scopes cover every capability the assistant can be asked about.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/presentations",
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/contacts.readonly",
	"https://www.googleapis.com/auth/contacts",
	"https://www.googleapis.com/auth/tasks",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

// GoogleExchanger swaps authorization codes for token blobs against Google's
// OAuth endpoints.
type GoogleExchanger struct {
	clientID     string
	clientSecret string
	redirectURI  string
	client       *http.Client
}

// NewGoogleExchanger creates an exchanger from config.
func NewGoogleExchanger(cfg config.AuthConfig) *GoogleExchanger {
	return &GoogleExchanger{
		clientID:     cfg.GoogleClientID,
		clientSecret: cfg.GoogleClientSecret,
		redirectURI:  cfg.RedirectURI,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AuthURL returns the consent URL. Offline access with forced consent so a
// refresh token is always issued.
func (g *GoogleExchanger) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", g.clientID)
	q.Set("redirect_uri", g.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(Scopes, " "))
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	if state != "" {
		q.Set("state", state)
	}
	return authEndpoint + "?" + q.Encode()
}

// Exchange swaps the authorization code for a credential blob. The blob keeps
// Google's field names (access_token, refresh_token, expiry_date, ...) so it
// can be handed to downstream API clients unchanged.
func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (domain.Credential, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", g.clientID)
	form.Set("client_secret", g.clientSecret)
	form.Set("redirect_uri", g.redirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var cred domain.Credential
	if err := json.Unmarshal(body, &cred); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return cred, nil
}
