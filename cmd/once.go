package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"jetski/internal/app"
	"jetski/internal/storage"
	"jetski/pkg/config"
)

var (
	onceURL     string
	onceNoImage bool
	onceDoc     bool
)

var (
	onceTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	onceWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run the pipeline for a single video",
	Long:  `Fetch, rank, storyboard and render one YouTube video, then write the full result as JSON.`,
	RunE:  runOnce,
}

func init() {
	onceCmd.Flags().StringVarP(&onceURL, "url", "u", "", "YouTube video URL")
	onceCmd.Flags().BoolVar(&onceNoImage, "no-images", false, "Skip panel image generation")
	onceCmd.Flags().BoolVarP(&onceDoc, "doc", "d", false, "Publish a Google Doc summary")
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	if onceURL == "" && len(args) > 0 {
		onceURL = args[0]
	}
	if onceURL == "" {
		return errors.New("please provide --url")
	}

	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	svc, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	req := app.NewRequest(onceURL)
	req.GenerateImages = !onceNoImage
	req.CreateGoogleDoc = onceDoc

	var result *app.Result
	var runErr error
	action := func() { result, runErr = app.NewPipeline(svc).Run(ctx, req) }
	if verbose {
		action()
	} else {
		_ = spinner.New().
			Title("Making a comic...").
			Action(action).
			Run()
	}
	if runErr != nil {
		return runErr
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	out := storage.NewLocalStorage(cfg.Images.OutputDir)
	resultPath, err := out.SaveFile(path.Join(result.Video.ID, result.Metrics.RunID, "full_result.json"), data)
	if err != nil {
		return err
	}
	if result.GoogleDoc != nil {
		if _, err := out.SaveFile(path.Join(result.Video.ID, result.Metrics.RunID, "preview.md"), []byte(result.GoogleDoc.Preview)); err != nil {
			slog.Warn("Failed to save preview", "error", err)
		}
	}

	fmt.Println(onceTitleStyle.Render(result.Storyboard.Title))
	slog.Info("Comic generated",
		"video", result.VideoTitle,
		"status", result.Status,
		"duration", fmt.Sprintf("%.1fs", result.Metrics.TotalTimeSeconds),
		"result", resultPath,
	)
	if result.Images != nil {
		slog.Info("Panels rendered", "success", result.Images.SuccessCount, "total", result.Images.TotalPanels)
	}
	if result.GoogleDoc != nil {
		switch {
		case result.GoogleDoc.DocURL != nil:
			slog.Info("Document published", "url", *result.GoogleDoc.DocURL)
		case result.GoogleDoc.Error != "":
			fmt.Println(onceWarnStyle.Render("Document failed: " + result.GoogleDoc.Error))
		default:
			fmt.Println(onceWarnStyle.Render("Google not authorized, saved a preview instead. Run: jetski auth google"))
		}
	}

	return nil
}
