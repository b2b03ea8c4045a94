package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"jetski/internal/googleauth"
	"jetski/pkg/config"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for JetSki",
	Long:  `Configure API keys, create directories, and write .env and config.yaml.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("JetSki Setup"))

	cfg := config.Default()
	env := make(map[string]string)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Creating directories", func() error { return createDirectories(cfg) }},
		{"Configuring LLM", func() error { return configureLLM(cfg, env) }},
		{"Configuring images", func() error { return configureImages(cfg, env) }},
		{"Configuring Google Cloud", func() error { return configureGCP(env) }},
		{"Writing configuration", func() error { return writeConfig(cfg, env) }},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	printNextSteps()
	return nil
}

func createDirectories(cfg *config.Config) error {
	dirs := []string{cfg.Images.OutputDir, filepath.Dir(cfg.Store.Path)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	fmt.Println(successStyle.Render("✓ Created directories"))
	return nil
}

func configureLLM(cfg *config.Config, env map[string]string) error {
	provider := cfg.LLM.Provider
	if err := huh.NewSelect[string]().
		Title("LLM provider").
		Description("Used to rank viral moments and write the storyboard").
		Options(
			huh.NewOption("OpenAI", "openai"),
			huh.NewOption("Groq", "groq"),
		).
		Value(&provider).
		Run(); err != nil {
		return err
	}

	keyName, keyURL := "OPENAI_API_KEY", "https://platform.openai.com/api-keys"
	if provider == "groq" {
		keyName, keyURL = "GROQ_API_KEY", "https://console.groq.com/keys"
		cfg.LLM.Model = "llama-3.3-70b-versatile"
	}
	cfg.LLM.Provider = provider

	var key string
	if err := huh.NewInput().
		Title(keyName).
		Description(keyURL).
		EchoMode(huh.EchoModePassword).
		Value(&key).
		Validate(required(keyName)).
		Run(); err != nil {
		return err
	}

	env[keyName] = strings.TrimSpace(key)
	return nil
}

func configureImages(cfg *config.Config, env map[string]string) error {
	var enable bool
	if err := huh.NewConfirm().
		Title("Render panel images with Gemini?").
		Description("Requires a GOOGLE_API_KEY from https://aistudio.google.com/apikey").
		Value(&enable).
		Run(); err != nil {
		return err
	}
	if !enable {
		fmt.Println(infoStyle.Render("Panels will be skipped until GOOGLE_API_KEY is set"))
		return nil
	}

	var key string
	concurrency := fmt.Sprint(cfg.Images.Concurrency)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Google API Key").
				EchoMode(huh.EchoModePassword).
				Value(&key),
			huh.NewSelect[string]().
				Title("Panels rendered at once").
				Options(huh.NewOptions("1", "2", "3", "6")...).
				Value(&concurrency),
			huh.NewConfirm().
				Title("Save panels to "+cfg.Images.OutputDir+"?").
				Value(&cfg.Images.SaveLocal),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if key = strings.TrimSpace(key); key != "" {
		env["GOOGLE_API_KEY"] = key
	}
	_, _ = fmt.Sscan(concurrency, &cfg.Images.Concurrency)
	return nil
}

func configureGCP(env map[string]string) error {
	var setupGCP bool
	if err := huh.NewConfirm().
		Title("Setup Google Cloud?").
		Description("For Google Docs publishing, Secret Manager and panel archiving").
		Value(&setupGCP).
		Run(); err != nil {
		return err
	}

	if !setupGCP {
		return nil
	}

	if commandExists("gcloud") {
		if project := getActiveProject(); project != "" {
			env["GOOGLE_CLOUD_PROJECT"] = project
			if err := enableGCPAPIs(project); err != nil {
				fmt.Println(warnStyle.Render(fmt.Sprintf("API enablement failed: %v", err)))
			}
		}
	} else {
		fmt.Println(warnStyle.Render("gcloud CLI not found, skipping API enablement"))
	}

	if err := setupGoogleOAuth(env); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("Google OAuth skipped: %v", err)))
	}

	var bucket string
	if err := huh.NewInput().
		Title("GCS bucket for panels (optional)").
		Value(&bucket).
		Run(); err != nil {
		return err
	}
	if bucket = strings.TrimSpace(bucket); bucket != "" {
		env["GCS_BUCKET"] = bucket
	}

	return nil
}

func getActiveProject() string {
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func enableGCPAPIs(project string) error {
	apis := []string{
		"docs.googleapis.com",
		"drive.googleapis.com",
		"generativelanguage.googleapis.com",
		"secretmanager.googleapis.com",
		"storage.googleapis.com",
	}

	return runWithSpinner("Enabling APIs", func() error {
		args := append([]string{"services", "enable"}, apis...)
		args = append(args, "--project", project)
		return runSetupCmd("gcloud", args...)
	})
}

func setupGoogleOAuth(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Setup Google Docs publishing?").
		Description("Creates a Doc and a Drive folder for every comic").
		Value(&setup).
		Run(); err != nil || !setup {
		return err
	}

	fmt.Println(infoStyle.Render(`
To create OAuth credentials:
1. Go to https://console.cloud.google.com/apis/credentials
2. Click "Create Credentials" → "OAuth client ID"
3. Choose "Desktop app" as application type
4. Copy the Client ID and Client Secret
`))

	var clientID, clientSecret string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Google Client ID").
				Value(&clientID),
			huh.NewInput().
				Title("Google Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&clientSecret),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return errors.New("client id and secret are both required")
	}
	env["GOOGLE_CLIENT_ID"] = clientID
	env["GOOGLE_CLIENT_SECRET"] = clientSecret

	var authenticate bool
	if err := huh.NewConfirm().
		Title("Authorize Google now?").
		Description("Opens browser to complete OAuth flow").
		Value(&authenticate).
		Run(); err != nil {
		return err
	}

	if authenticate {
		auth := googleauth.New(clientID, clientSecret, config.Default().GoogleTokenPath)
		if err := runGoogleAuth(rootCmd.Context(), auth); err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("OAuth flow failed: %v", err)))
			fmt.Println(infoStyle.Render("You can retry later with: jetski auth google"))
		}
	}

	return nil
}

func writeConfig(cfg *config.Config, env map[string]string) error {
	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return cfg.WriteYAML("config.yaml")
		}
	}

	if err := writeEnvFile(env); err != nil {
		return err
	}
	if err := cfg.WriteYAML("config.yaml"); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ Created config.yaml"))
	return nil
}

func writeEnvFile(env map[string]string) error {
	f, err := os.OpenFile(".env", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	order := []string{
		"GOOGLE_CLOUD_PROJECT",
		"OPENAI_API_KEY",
		"GROQ_API_KEY",
		"GOOGLE_API_KEY",
		"GOOGLE_CLIENT_ID",
		"GOOGLE_CLIENT_SECRET",
		"GCS_BUCKET",
	}

	for _, key := range order {
		if val, ok := env[key]; ok && val != "" {
			_, _ = fmt.Fprintf(f, "%s=%s\n", key, val)
		}
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Check your setup: jetski auth status")
	fmt.Println("  2. Make a comic: jetski once --url \"https://youtu.be/...\"")
	fmt.Println("  3. Or start the API: jetski serve")
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %s", err, stderr.String())
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
