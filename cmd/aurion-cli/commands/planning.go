package commands

import (
	"log/slog"
	"os"

	"aurassist-backend/lib/configutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(planningCmd)
}

var planningCmd = &cobra.Command{
	Use:   "planning",
	Short: "Fetches the ICS planning feed and prints the upcoming events.",
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

		out := service.Planning(cmd.Context(), cfg.Username)
		if !out.Success {
			slog.Error("scrape failed", "message", out.Errors)
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Start", "End", "Type", "Title", "Location", "Instructor"})
		for _, event := range out.Data.Events {
			start := event.Start.Format("Mon 02/01 15:04")
			end := event.End.Format("15:04")
			if event.AllDay {
				start = event.Start.Format("Mon 02/01")
				end = "all day"
			}
			t.AppendRow(table.Row{
				start,
				end,
				event.Type.String(),
				event.Title,
				event.Location,
				event.Instructor,
			})
		}
		t.Render()

		slog.Info("done", "events", len(out.Data.Events))
	},
}
