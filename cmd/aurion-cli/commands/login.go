package commands

import (
	"log/slog"

	"aurassist-backend/lib/configutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs into the portal with the credentials from config.json5 and stores the session.",
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

		out := service.Login(cmd.Context(), cfg.Username, cfg.Password)
		if !out.Success {
			slog.Error("login failed", "message", out.Errors)
			return
		}
		slog.Info("logged in", "username", out.Data.Username, "expires_at", out.Data.ExpiresAt)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drops the stored session and logs out upstream.",
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

		out := service.Logout(cmd.Context(), cfg.Username)
		if !out.Success {
			slog.Error("logout failed", "message", out.Errors)
			return
		}
		slog.Info("logged out", "username", cfg.Username)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
