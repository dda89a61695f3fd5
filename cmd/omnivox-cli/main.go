package main

import (
	"context"

	"ovxassist-backend/cmd/omnivox-cli/commands"
	"ovxassist-backend/lib/serviceutil"
	"ovxassist-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(true)
	err := telemetry.SetupFromEnv(context.Background(), "omnivox-cli")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	commands.ExecuteContext(context.Background())
}
