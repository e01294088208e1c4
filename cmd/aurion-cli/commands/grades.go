package commands

import (
	"log/slog"
	"os"

	"aurassist-backend/lib/configutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gradesCmd)
}

var gradesCmd = &cobra.Command{
	Use:   "grades",
	Short: "Scrapes the grade carousel, reconciles it with the stored set and prints the result.",
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

		out := service.Grades(cmd.Context(), cfg.Username)
		if !out.Success {
			slog.Error("scrape failed", "message", out.Errors)
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Date", "Course", "Label", "Grade", "New"})
		for _, record := range out.Data.Grades {
			flag := ""
			if record.IsNew {
				flag = "*"
			}
			t.AppendRow(table.Row{
				record.Date.Format("02/01/2006"),
				record.Code,
				record.Label,
				record.Grade,
				flag,
			})
		}
		t.Render()

		slog.Info("done", "total", len(out.Data.Grades), "new", len(out.Data.New))
	},
}
