package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ovxassist-backend/lib/serviceutil"
	"ovxassist-backend/lib/textutil"
)

var documentsForceRefresh *bool

func init() {
	documentsForceRefresh = documentsCmd.Flags().Bool("force-refresh", false, "Ignore the cached summary list.")
	rootCmd.AddCommand(documentsCmd)
}

var documentsCmd = &cobra.Command{
	Use:   "documents [class] [--force-refresh]",
	Short: "Lists document counts per class, or every document of one class.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		summaries, err := client.Lea.DocumentSummaries(cmd.Context(), *documentsForceRefresh)
		if err != nil {
			serviceutil.Fatal("failed to fetch document summaries", err)
		}

		if len(args) == 0 {
			t := newTable()
			t.AppendHeader(table.Row{"Class", "Available documents"})
			for _, summary := range summaries {
				t.AppendRow(table.Row{summary.Name, summary.AvailableDocuments})
			}
			t.Render()
			return
		}

		query := textutil.NormalizeName(args[0])
		if query == "" {
			fmt.Fprintf(os.Stderr, "no class matched %q\n", args[0])
			os.Exit(1)
		}
		for _, summary := range summaries {
			if !strings.Contains(textutil.NormalizeName(summary.Name), query) {
				continue
			}

			categories, err := client.Lea.ClassDocuments(cmd.Context(), summary.Href)
			if err != nil {
				serviceutil.Fatal("failed to fetch class documents", err)
			}

			t := newTable()
			t.AppendHeader(table.Row{"Category", "Document", "Posted", "Viewed"})
			for _, category := range categories {
				for _, doc := range category.Documents {
					t.AppendRow(table.Row{category.Name, doc.Name, doc.Posted, doc.Viewed})
				}
			}
			t.Render()
			return
		}

		fmt.Fprintf(os.Stderr, "no class matched %q\n", args[0])
		os.Exit(1)
	},
}
