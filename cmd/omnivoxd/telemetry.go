package main

import (
	"context"
	"log/slog"

	"ovxassist-backend/lib/restyutil"
	"ovxassist-backend/lib/scrapers/omnivox/core"
	"ovxassist-backend/lib/serviceutil"
	"ovxassist-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	err := telemetry.SetupFromEnv(ctx, "omnivoxd")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
		core.SetRestyInstrumentOutput(
			restyutil.NewFilesystemOutput(".dev/resty/omnivox_core"),
		)
	}
}
