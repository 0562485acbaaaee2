package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:     "events <id>",
	Short:   "Show the audit trail of a resource",
	GroupID: "resources",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := parseID(args[0])

		events, err := atlasClient.GetEvents(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(events)
		} else {
			printEventsTable(events)
		}
		return nil
	},
}
