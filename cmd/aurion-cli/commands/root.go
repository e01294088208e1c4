package commands

import (
	"context"
	"fmt"

	"aurassist-backend/pkg/migrations"
	"aurassist-backend/services/portal"
	"aurassist-backend/services/portal/db"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aurion-cli",
	Short: "aurion-cli scrapes the Aurion student portal from the terminal.",
}

var dbPath *string

func init() {
	dbPath = rootCmd.PersistentFlags().String("db", "portal.db", "The database sessions and grades are kept in.")
}

type Config struct {
	BaseUrl  string                `json:"base_url"`
	Username string                `json:"username"`
	Password string                `json:"password"`
	Smtp     *portal.SmtpConfig    `json:"smtp"`
	Weights  []portal.CourseWeight `json:"weights"`
}

// openService builds a portal service off the cli config and the --db
// flag. Every subcommand goes through here.
func openService(cfg Config) (*portal.Service, error) {
	sqldb, err := migrations.Open(*dbPath, db.Schema)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	options := portal.Options{
		BaseUrl: cfg.BaseUrl,
		Weights: cfg.Weights,
	}
	if cfg.Smtp != nil {
		options.Notifier = portal.SmtpNotifier{Config: *cfg.Smtp}
	}
	return portal.NewService(sqldb, options), nil
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
