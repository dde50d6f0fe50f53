package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"spendscan/internal/services"
	gsheet "spendscan/internal/sheets/google"
)

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets reporting",
		Long:  `Authorize spendscan against Google Sheets and publish the budget report on demand.`,
	}

	cmd.AddCommand(sheetsAuthCmd())
	cmd.AddCommand(sheetsPublishCmd())
	return cmd
}

func sheetsAuthCmd() *cobra.Command {
	var (
		port      string
		tokenFile string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain an OAuth user token for Google Sheets",
		Long: `Runs the installed-app OAuth flow with the client from GOOGLE_OAUTH_CLIENT_JSON
or GOOGLE_OAUTH_CLIENT_FILE and saves the token. The client must allow the
redirect URI http://localhost:<port>/callback.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := gsheet.OAuthConfigFromEnv()
			if err != nil {
				return err
			}
			cfg.RedirectURL = "http://localhost:" + port + "/callback"

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			code, err := waitForAuthCode(ctx, cmd, cfg, port)
			if err != nil {
				return err
			}

			tok, err := cfg.Exchange(ctx, code)
			if err != nil {
				return fmt.Errorf("token exchange: %w", err)
			}
			if err := gsheet.SaveToken(tokenFile, tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\nSet GOOGLE_OAUTH_TOKEN_FILE=%s for the worker.\n", tokenFile, tokenFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "8085", "local port for the OAuth redirect")
	cmd.Flags().StringVar(&tokenFile, "token-file", envOr("GOOGLE_OAUTH_TOKEN_FILE", "token.json"), "where to save the token")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for authorization")
	return cmd
}

// waitForAuthCode prints the consent URL and serves the redirect until a code
// arrives or ctx ends.
func waitForAuthCode(ctx context.Context, cmd *cobra.Command, cfg *oauth2.Config, port string) (string, error) {
	ln, err := net.Listen("tcp", "localhost:"+port)
	if err != nil {
		return "", fmt.Errorf("listen for OAuth redirect: %w", err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		if msg := r.URL.Query().Get("error"); msg != "" {
			http.Error(w, "OAuth error: "+msg, http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization denied: %s", msg)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- r.URL.Query().Get("code")
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	url := cfg.AuthCodeURL("spendscan", oauth2.AccessTypeOffline)
	fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n%s\n", url)

	select {
	case code := <-codeCh:
		if code == "" {
			return "", errors.New("redirect did not include an authorization code")
		}
		return code, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("authorization not completed: %w", ctx.Err())
	}
}

func sheetsPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish the budget report to Google Sheets once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			client, err := gsheet.NewFromEnv(cmd.Context())
			if err != nil {
				return err
			}

			p := services.NewReportProcessor(svc, client, services.DefaultReportProcessorConfig())
			if err := p.Publish(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Report published")
			return nil
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
