package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ovxassist-backend/lib/scrapers/omnivox/lea"
	"ovxassist-backend/lib/serviceutil"
)

func init() {
	rootCmd.AddCommand(courseCmd)
}

func closestTitle(classes []lea.Class, query string) (string, float64) {
	var best string
	var bestSimilarity float64
	for _, class := range classes {
		similarity := matchr.JaroWinkler(strings.ToLower(class.Title), strings.ToLower(query), false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = class.Title
		}
	}
	return best, bestSimilarity
}

func printClass(class lea.Class) {
	t := newTable()
	t.AppendRow(table.Row{"Code", class.Code})
	t.AppendRow(table.Row{"Title", class.Title})
	t.AppendRow(table.Row{"Teacher", class.Teacher})
	t.AppendRow(table.Row{"Section", class.Section})
	t.AppendRow(table.Row{"Schedule", strings.Join(class.Schedule, ", ")})
	t.AppendRow(table.Row{"Grade", class.Grade})
	t.AppendRow(table.Row{"Average", formatStat(class.Average, class.HasAverage)})
	t.AppendRow(table.Row{"Median", formatStat(class.Median, class.HasMedian)})
	t.AppendRow(table.Row{"New documents", class.NewDocuments})
	t.AppendRow(table.Row{"New assignments", class.NewAssignments})
	t.Render()
}

var courseCmd = &cobra.Command{
	Use:   "course <code|title|teacher>",
	Short: "Shows one class in detail.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := args[0]
		client := createClient(cmd.Context())

		lookups := []lea.ClassQuery{
			{Code: query},
			{Title: query},
			{Teacher: query},
		}
		for _, lookup := range lookups {
			class, ok, err := client.Lea.Class(cmd.Context(), lookup)
			if err != nil {
				serviceutil.Fatal("failed to fetch classes", err)
			}
			if ok {
				printClass(class)
				return
			}
		}

		classes, err := client.Lea.Classes(cmd.Context(), false)
		if err != nil {
			serviceutil.Fatal("failed to fetch classes", err)
		}
		fmt.Fprintf(os.Stderr, "no class matched %q\n", query)
		if suggestion, similarity := closestTitle(classes, query); similarity > 0 {
			fmt.Fprintf(os.Stderr, "did you mean %q?\n", suggestion)
		}
		os.Exit(1)
	},
}
