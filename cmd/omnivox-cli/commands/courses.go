package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ovxassist-backend/lib/scrapers/omnivox/lea"
	"ovxassist-backend/lib/serviceutil"
)

var coursesForceRefresh *bool

func init() {
	coursesForceRefresh = coursesCmd.Flags().Bool("force-refresh", false, "Ignore the cached class list.")
	rootCmd.AddCommand(coursesCmd)
}

func formatStat(value float64, has bool) string {
	if !has {
		return ""
	}
	return fmt.Sprintf("%.1f %%", value)
}

func formatClassRow(class lea.Class) table.Row {
	return table.Row{
		class.Code,
		class.Title,
		class.Teacher,
		class.Grade,
		formatStat(class.Average, class.HasAverage),
		formatStat(class.Median, class.HasMedian),
		class.NewDocuments,
	}
}

var coursesCmd = &cobra.Command{
	Use:   "courses [--force-refresh]",
	Short: "Lists your classes with grades and averages.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		classes, err := client.Lea.Classes(cmd.Context(), *coursesForceRefresh)
		if err != nil {
			serviceutil.Fatal("failed to fetch classes", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Code", "Title", "Teacher", "Grade", "Average", "Median", "New docs"})
		for _, class := range classes {
			t.AppendRow(formatClassRow(class))
		}
		t.Render()
	},
}
