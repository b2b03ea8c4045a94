package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	CallbackPort = "8085"
	redirectURL  = "http://localhost:" + CallbackPort + "/callback"
	stateToken   = "jetski-state"
)

var ErrNotAuthenticated = errors.New("google account not authorized, run 'jetski auth google'")

var scopes = []string{
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive.file",
}

// Auth holds the OAuth client config and the cached token used for Docs and Drive.
type Auth struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenPath string
}

func New(clientID, clientSecret, tokenPath string) *Auth {
	return &Auth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
			RedirectURL:  redirectURL,
		},
		tokenPath: tokenPath,
	}
}

func (a *Auth) State() string {
	return stateToken
}

func (a *Auth) LoadToken() error {
	data, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}

	a.token = &token
	return nil
}

func (a *Auth) SaveToken() error {
	data, err := json.MarshalIndent(a.token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if dir := filepath.Dir(a.tokenPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	if err := os.WriteFile(a.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

func (a *Auth) GetAuthURL() string {
	return a.config.AuthCodeURL(stateToken, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (a *Auth) Exchange(ctx context.Context, code string) error {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	a.token = token
	return a.SaveToken()
}

// Client returns an HTTP client that refreshes the stored token as needed.
func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	if a.token == nil {
		if err := a.LoadToken(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
		}
	}

	return a.config.Client(ctx, a.token), nil
}

// HasToken reports whether a token is stored, even an expired one with a refresh token.
func (a *Auth) HasToken() bool {
	if a.token == nil {
		if err := a.LoadToken(); err != nil {
			return false
		}
	}
	return a.token != nil && (a.token.Valid() || a.token.RefreshToken != "")
}

func (a *Auth) IsAuthenticated() bool {
	if a.token == nil {
		if err := a.LoadToken(); err != nil {
			return false
		}
	}
	return a.token != nil && a.token.Valid()
}
