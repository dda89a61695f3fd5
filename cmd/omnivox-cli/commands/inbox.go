package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ovxassist-backend/lib/serviceutil"
)

func init() {
	rootCmd.AddCommand(inboxCmd)
}

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Lists the messages in your MIO inbox.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		previews, err := client.Mio.Previews(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch inbox", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "From", "Subject"})
		for i, preview := range previews {
			t.AppendRow(table.Row{i, preview.Author, preview.Title})
		}
		t.Render()
	},
}
