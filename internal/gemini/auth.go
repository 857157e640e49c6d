package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned when OAuth is configured but no token file exists.
var ErrNoToken = errors.New("no saved gemini token")

var requiredScopes = []string{
	"https://www.googleapis.com/auth/generative-language",
}

// googleEndpoint is Google's OAuth2 endpoint.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// TokenFilePath returns <base>/auth/gemini_token.json.
func TokenFilePath(base string) string {
	return filepath.Join(base, "auth", "gemini_token.json")
}

// OAuth2Config returns the oauth2.Config for the given client credentials.
func OAuth2Config(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       requiredScopes,
		Endpoint:     googleEndpoint,
	}
}

// LoadToken loads a previously saved token. A missing file yields (nil, nil).
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// SaveToken persists a token atomically.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string
	last string
	log  *zap.Logger
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		if err := SaveToken(s.path, tok); err != nil {
			s.log.Warn("could not save refreshed token", zap.String("path", s.path), zap.Error(err))
		} else {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}

// NewTokenSource wraps ts so every new access token is written to path.
// current is the token already on disk, if any; it is reused until it expires
// and is not written again.
func NewTokenSource(ts oauth2.TokenSource, path string, current *oauth2.Token, log *zap.Logger) oauth2.TokenSource {
	if log == nil {
		log = zap.NewNop()
	}
	src := &savingTokenSource{ts: ts, path: path, log: log}
	if current != nil {
		src.last = current.AccessToken
	}
	return oauth2.ReuseTokenSource(current, src)
}

// OAuthHTTPClient returns an HTTP client authenticated with the token saved
// under base, refreshing and re-saving it as needed.
func OAuthHTTPClient(ctx context.Context, base string, cfg *oauth2.Config, log *zap.Logger) (*http.Client, error) {
	path := TokenFilePath(base)
	tok, err := LoadToken(path)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, fmt.Errorf("%w: place an OAuth token at %s", ErrNoToken, path)
	}
	return oauth2.NewClient(ctx, NewTokenSource(cfg.TokenSource(ctx, tok), path, tok, log)), nil
}
