package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
	goption "google.golang.org/api/option"
)

const testOAuthClient = `{"installed":{"client_id":"test-client","client_secret":"test-secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func clearOAuthEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE",
		"GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestOAuthConfigFromEnv_Missing(t *testing.T) {
	clearOAuthEnv(t)

	_, err := OAuthConfigFromEnv()
	if !errors.Is(err, ErrNoOAuthClient) {
		t.Fatalf("expected ErrNoOAuthClient, got %v", err)
	}
}

func TestOAuthConfigFromEnv_JSON(t *testing.T) {
	clearOAuthEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)

	cfg, err := OAuthConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClientID != "test-client" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if len(cfg.Scopes) != 1 || !strings.Contains(cfg.Scopes[0], "spreadsheets") {
		t.Errorf("Scopes = %v", cfg.Scopes)
	}
}

func TestOAuthConfigFromEnv_Invalid(t *testing.T) {
	clearOAuthEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", `{"nope":true}`)

	if _, err := OAuthConfigFromEnv(); err == nil {
		t.Fatal("expected error for malformed client")
	}
}

func TestSaveTokenAndTokenFromEnv(t *testing.T) {
	clearOAuthEnv(t)
	path := filepath.Join(t.TempDir(), "token.json")

	want := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := SaveToken(path, want); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", path)
	got, err := TokenFromEnv()
	if err != nil {
		t.Fatalf("TokenFromEnv() error = %v", err)
	}
	if got.AccessToken != "access" || got.RefreshToken != "refresh" || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("token = %+v", got)
	}
}

func TestTokenFromEnv_Unset(t *testing.T) {
	clearOAuthEnv(t)

	tok, err := TokenFromEnv()
	if err != nil || tok != nil {
		t.Fatalf("expected nil token and error, got %v, %v", tok, err)
	}
}

func TestNewFromEnv_OAuthToken(t *testing.T) {
	clearOAuthEnv(t)
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-1")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `{"access_token":"user-token","token_type":"Bearer","expiry":"2099-01-01T00:00:00Z"}`)

	var (
		mu      sync.Mutex
		gotAuth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewFromEnv(context.Background(), goption.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("NewFromEnv() error = %v", err)
	}
	if err := c.WriteBudgets(context.Background(), nil); err != nil {
		t.Fatalf("WriteBudgets() error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotAuth != "Bearer user-token" {
		t.Errorf("Authorization = %q, want user token", gotAuth)
	}
}
