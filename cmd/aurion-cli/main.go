package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"aurassist-backend/cmd/aurion-cli/commands"
	"aurassist-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()
	telemetry.InitSlog(true)

	t, err := telemetry.SetupFromFile(ctx, "aurion-cli", "telemetry.json5")
	if err != nil {
		slog.Warn("failed to set up telemetry", "err", err)
	}
	telemetry.InstrumentPerfStats(ctx)

	cmdErr := commands.ExecuteContext(ctx)

	// flush batched spans before the process goes away
	if err := t.Shutdown(context.Background()); err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
	if cmdErr != nil {
		fmt.Fprintln(os.Stderr, cmdErr)
		os.Exit(1)
	}
}
