package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"jetski/internal/store"
	"jetski/pkg/config"
)

var historyLimit int

var historyHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently processed videos",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Number of videos to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if historyLimit <= 0 {
		historyLimit = cfg.Server.HistoryLimit
	}

	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.Store.Driver,
		Path:        cfg.Store.Path,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	videos, err := st.History(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Println("No videos processed yet.")
		return nil
	}

	fmt.Println(historyHeaderStyle.Render(fmt.Sprintf("%-4s %-16s %-8s %-6s %-6s %s", "ID", "CREATED", "SEGMENTS", "BOARDS", "COMICS", "TITLE")))
	for _, v := range videos {
		fmt.Printf("%-4d %-16s %-8d %-6d %-6d %s\n",
			v.ID, v.CreatedAt.Local().Format("2006-01-02 15:04"), v.SegmentsCount, v.StoryboardsCount, v.ComicsCount, v.Title)
	}
	return nil
}
