package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no stored token exists.
var ErrNoToken = errors.New("no Google OAuth token found")

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
type TokenProvider interface {
	// Token retrieves the stored OAuth token
	Token(ctx context.Context) (*oauth2.Token, error)

	// HasToken checks if a token exists
	HasToken() bool
}

// FileTokenProvider provides tokens from a JSON token file.
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a new file-based token provider.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// Path returns the token file path.
func (p *FileTokenProvider) Path() string {
	return p.path
}

// Token reads the token file.
func (p *FileTokenProvider) Token(_ context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token format: %w", err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("invalid token format: no access or refresh token")
	}
	return &token, nil
}

// HasToken checks if the token file exists.
func (p *FileTokenProvider) HasToken() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// Save writes the token file with owner-only permissions.
func (p *FileTokenProvider) Save(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
