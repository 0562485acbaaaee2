package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var childrenCmd = &cobra.Command{
	Use:     "children <id>",
	Short:   "List direct children of a resource",
	GroupID: "resources",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid resource id %q\n", args[0])
			os.Exit(1)
		}

		children, err := atlasClient.ListChildren(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(children)
		} else {
			printResourceListTable(children, len(children))
		}
		return nil
	},
}
