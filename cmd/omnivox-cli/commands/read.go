package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ovxassist-backend/lib/serviceutil"
)

func init() {
	rootCmd.AddCommand(readCmd)
}

var readCmd = &cobra.Command{
	Use:   "read <index|id>",
	Short: "Reads one MIO message, by inbox index or message id.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		id := args[0]
		if index, err := strconv.Atoi(id); err == nil {
			previews, err := client.Mio.Previews(cmd.Context())
			if err != nil {
				serviceutil.Fatal("failed to fetch inbox", err)
			}
			if index < 0 || index >= len(previews) {
				fmt.Fprintf(os.Stderr, "inbox has no message at index %d\n", index)
				os.Exit(1)
			}
			id = previews[index].Id
		}

		message, err := client.Mio.Message(cmd.Context(), id)
		if err != nil {
			serviceutil.Fatal("failed to fetch message", err)
		}

		fmt.Printf("From: %s\n", message.Author)
		fmt.Printf("To: %s\n", message.Recipient)
		fmt.Printf("Date: %s\n", message.Date)
		fmt.Printf("Subject: %s\n\n", message.Title)
		fmt.Println(message.Content)
	},
}
