package main

import (
	"flag"

	"ovxassist-backend/lib/configutil"
	configlibsql "ovxassist-backend/lib/configutil/libsql"
	"ovxassist-backend/lib/gradestore"
	"ovxassist-backend/lib/mailer"
	"ovxassist-backend/lib/serviceutil"
)

type StudentConfig struct {
	StudentId string `json:"student_id"`
	Password  string `json:"password"`
	// document alerts are skipped when empty
	AlertEmail string `json:"alert_email"`
}

type Config struct {
	Database configlibsql.Struct `json:"database"`
	Smtp     mailer.Config       `json:"smtp"`
	// local hours at which snapshots are taken, defaults to 10 and 18
	SnapshotHours []int           `json:"snapshot_hours"`
	Students      []StudentConfig `json:"students"`
	// overrides for testing against something other than production
	BaseUrl    string `json:"base_url"`
	LeaBaseUrl string `json:"lea_base_url"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	pollNow := flag.Bool("now", false, "Poll every student immediately on startup.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	database, err := cfg.Database.OpenDB(gradestore.Schema)
	if err != nil {
		serviceutil.Fatal("open database", err)
	}
	defer database.Close()

	service := NewService(cfg, gradestore.NewStore(database), mailer.New(cfg.Smtp))
	if *pollNow {
		service.poll(ctx)
	}
	go service.daemon(ctx)

	<-ctx.Done()
}
