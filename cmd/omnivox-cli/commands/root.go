package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ovxassist-backend/lib/configutil"
	"ovxassist-backend/lib/restyutil"
	"ovxassist-backend/lib/scrapers/omnivox"
	"ovxassist-backend/lib/scrapers/omnivox/core"
	"ovxassist-backend/lib/serviceutil"
)

type Config struct {
	StudentId string `json:"student_id"`
	Password  string `json:"password"`
	// overrides for testing against something other than production
	BaseUrl    string `json:"base_url"`
	LeaBaseUrl string `json:"lea_base_url"`
}

var verbose *bool

var rootCmd = &cobra.Command{
	Use:   "omnivox-cli",
	Short: "omnivox-cli reads your Omnivox account from the terminal.",
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Dump every portal request and response to .dev/resty.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createClient(ctx context.Context) *omnivox.Client {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	if *verbose {
		core.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/scraper"))
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*60)
	defer cancel()

	client, err := omnivox.NewClient(ctx, omnivox.Options{
		StudentId:  cfg.StudentId,
		Password:   cfg.Password,
		BaseUrl:    cfg.BaseUrl,
		LeaBaseUrl: cfg.LeaBaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to login to omnivox", err)
	}
	return client
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
