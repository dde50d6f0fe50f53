package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// ErrNoOAuthClient is returned when no OAuth client credentials are configured.
var ErrNoOAuthClient = errors.New("missing OAuth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")

// OAuthConfigFromEnv builds the OAuth2 config of an installed-app client from
// GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE.
func OAuthConfigFromEnv() (*oauth2.Config, error) {
	b, err := readEnvJSON("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNoOAuthClient
	}
	cfg, err := googleoauth.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

// TokenFromEnv reads a saved user token from GOOGLE_OAUTH_TOKEN_JSON or
// GOOGLE_OAUTH_TOKEN_FILE. It returns nil when neither is set.
func TokenFromEnv() (*oauth2.Token, error) {
	b, err := readEnvJSON("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil || b == nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}
	return &tok, nil
}

// SaveToken writes tok to path readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// oauthTokenSource returns a refreshing token source when both an OAuth
// client and a saved token are configured, and nil otherwise.
func oauthTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := TokenFromEnv()
	if err != nil || tok == nil {
		return nil, err
	}
	cfg, err := OAuthConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return cfg.TokenSource(ctx, tok), nil
}

func readEnvJSON(jsonKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonKey)); v != "" {
		return []byte(v), nil
	}
	path := strings.TrimSpace(os.Getenv(fileKey))
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileKey, err)
	}
	return b, nil
}
