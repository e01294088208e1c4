package commands

import (
	"fmt"
	"log/slog"
	"os"

	"aurassist-backend/lib/configutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(absencesCmd)
}

var absencesCmd = &cobra.Command{
	Use:   "absences",
	Short: "Scrapes the absence table and prints the per-course failure statistics.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.Read[Config]("config.json5")
		if err != nil {
			slog.Error("failed to read config", "err", err)
			return
		}
		service, err := openService(cfg)
		if err != nil {
			slog.Error("failed to open service", "err", err)
			return
		}

		out := service.Absences(cmd.Context(), cfg.Username)
		if !out.Success {
			slog.Error("scrape failed", "message", out.Errors)
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Date", "Course", "Duration", "Reason"})
		for _, absence := range out.Data.Records {
			t.AppendRow(table.Row{
				absence.Date.Format("02/01/2006"),
				absence.CourseLabel,
				absence.Duration,
				absence.Reason,
			})
		}
		t.Render()

		stats := table.NewWriter()
		stats.SetOutputMirror(os.Stdout)
		stats.AppendHeader(table.Row{"Course", "Unjustified", "Budget", "%", "Failing"})
		for _, stat := range out.Data.Stats {
			failing := ""
			if stat.AboveThreshold {
				failing = "FAILING"
			}
			stats.AppendRow(table.Row{
				stat.Code,
				fmt.Sprintf("%.1fh", stat.UnjustifiedHours),
				fmt.Sprintf("%.0fh", stat.TotalHours),
				fmt.Sprintf("%.1f", stat.Percent),
				failing,
			})
		}
		stats.Render()
	},
}
