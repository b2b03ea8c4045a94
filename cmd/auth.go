package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"jetski/internal/googleauth"
	"jetski/pkg/config"
)

var (
	authInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	authSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	authErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with external services",
	Long:  `Authorize Google Docs and Drive publishing, or check which services are configured.`,
}

var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Authorize Google Docs and Drive (OAuth)",
	Long:  `Complete the Google OAuth flow using GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET from .env.`,
	RunE:  runAuthGoogle,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check authentication status for all services",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authGoogleCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(authInfoStyle.Render("\nService Authentication Status:\n"))

	switch cfg.LLM.Provider {
	case "groq":
		printStatus(cfg.GroqAPIKey != "", "Groq: API key configured", "Groq: missing GROQ_API_KEY")
	default:
		printStatus(cfg.OpenAIAPIKey != "", "OpenAI: API key configured", "OpenAI: missing OPENAI_API_KEY")
	}

	if cfg.GoogleAPIKey != "" {
		fmt.Println(authSuccessStyle.Render("✓ Gemini images: API key configured"))
	} else {
		fmt.Println(authInfoStyle.Render("○ Gemini images: not configured, panels will be skipped"))
	}

	if cfg.GooglePublishingConfigured() {
		auth := googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleTokenPath)
		if auth.HasToken() {
			fmt.Println(authSuccessStyle.Render("✓ Google Docs: authenticated (token exists)"))
		} else {
			fmt.Println(authErrorStyle.Render("✗ Google Docs: credentials set, but not authenticated"))
			fmt.Println(authInfoStyle.Render("  Run: jetski auth google"))
		}
	} else {
		fmt.Println(authInfoStyle.Render("○ Google Docs: not configured, documents run in preview mode"))
	}

	if cfg.GCSBucket != "" {
		fmt.Println(authSuccessStyle.Render("✓ Cloud Storage: bucket " + cfg.GCSBucket))
	} else {
		fmt.Println(authInfoStyle.Render("○ Cloud Storage: not configured (optional)"))
	}

	fmt.Println()
	return nil
}

func printStatus(ok bool, good, bad string) {
	if ok {
		fmt.Println(authSuccessStyle.Render("✓ " + good))
		return
	}
	fmt.Println(authErrorStyle.Render("✗ " + bad))
}

func runAuthGoogle(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.GooglePublishingConfigured() {
		return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set in .env")
	}

	return runGoogleAuth(cmd.Context(), googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleTokenPath))
}

// runGoogleAuth opens the consent page and waits for the redirect on the local callback port.
func runGoogleAuth(ctx context.Context, auth *googleauth.Auth) error {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	listener, err := net.Listen("tcp", ":"+googleauth.CallbackPort)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
	}

	server.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("state") != auth.State() {
			errChan <- errors.New("state mismatch in callback")
			http.Error(w, "Invalid state", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- errors.New("no code in callback")
			_, _ = fmt.Fprintf(w, "<html><body><h1>Error</h1><p>No authorization code received.</p></body></html>")
			return
		}

		codeChan <- code
		_, _ = fmt.Fprintf(w, "<html><body><h1>Success!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := auth.GetAuthURL()
	fmt.Println(authInfoStyle.Render("\nOpening browser for Google authentication..."))
	fmt.Println(authInfoStyle.Render("If browser doesn't open, visit:\n" + authURL))

	_ = browser.OpenURL(authURL)

	fmt.Println(authInfoStyle.Render("\nWaiting for authentication..."))

	select {
	case code := <-codeChan:
		if err := auth.Exchange(ctx, code); err != nil {
			return err
		}
		fmt.Println(authSuccessStyle.Render("✓ Google authentication complete"))
		return nil

	case err := <-errChan:
		return err

	case <-ctx.Done():
		return ctx.Err()

	case <-time.After(5 * time.Minute):
		return errors.New("authentication timed out")
	}
}
