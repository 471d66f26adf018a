package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Endpoint is Yahoo's OAuth2 authorization server.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://api.login.yahoo.com/oauth2/request_auth",
	TokenURL: "https://api.login.yahoo.com/oauth2/get_token",
}

// ErrNoToken is returned when the token file is missing. The user has to
// complete the authorization flow once to create it.
var ErrNoToken = errors.New("yahoo: no oauth token")

// OAuthConfig identifies the registered application.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // "oob" for the out-of-band desktop flow
	TokenFile    string
	Timeout      time.Duration
}

func (c OAuthConfig) config() *oauth2.Config {
	redirect := c.RedirectURL
	if redirect == "" {
		redirect = "oob"
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     Endpoint,
		RedirectURL:  redirect,
	}
}

// AuthCodeURL is the page the user visits to grant access.
func (c OAuthConfig) AuthCodeURL(state string) string {
	return c.config().AuthCodeURL(state)
}

// Exchange trades an authorization code for a token and stores it in the
// token file.
func (c OAuthConfig) Exchange(ctx context.Context, code string) error {
	tok, err := c.config().Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return SaveToken(c.TokenFile, tok)
}

// NewHTTPClient returns an HTTP client that authorizes every request and
// refreshes the access token when it expires. Refreshed tokens are written
// back to the token file so the next run does not start from a stale one.
func NewHTTPClient(ctx context.Context, cfg OAuthConfig, logger *slog.Logger) (*http.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("yahoo: client id and secret are required")
	}
	tok, err := LoadToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	src := &persistingSource{
		base:   cfg.config().TokenSource(ctx, tok),
		path:   cfg.TokenFile,
		last:   tok.AccessToken,
		logger: logger,
	}
	client := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src))
	client.Timeout = cfg.Timeout
	if client.Timeout <= 0 {
		client.Timeout = 30 * time.Second
	}
	return client, nil
}

// LoadToken reads a JSON-encoded token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoToken, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s holds no access or refresh token", ErrNoToken, path)
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

type persistingSource struct {
	base   oauth2.TokenSource
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			s.logger.Warn("Failed to persist refreshed token", "path", s.path, "error", err)
		} else {
			s.logger.Info("OAuth token refreshed", "expires", tok.Expiry)
		}
	}
	return tok, nil
}
