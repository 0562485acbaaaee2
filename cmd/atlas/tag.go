package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:     "tag",
	Short:   "Manage resource tags",
	GroupID: "resources",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <id> <tag>...",
	Short: "Add tags to a resource",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := parseID(args[0])
		tags := args[1:]

		for _, tag := range tags {
			if err := atlasClient.AddTag(context.Background(), id, tag); err != nil {
				fmt.Fprintf(os.Stderr, "Error adding tag %q: %v\n", tag, err)
				os.Exit(1)
			}
		}

		fmt.Printf("Added tag(s) to %d\n", id)
		return nil
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:     "remove <id> <tag>...",
	Aliases: []string{"rm"},
	Short:   "Remove tags from a resource",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := parseID(args[0])
		tags := args[1:]

		for _, tag := range tags {
			if err := atlasClient.RemoveTag(context.Background(), id, tag); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing tag %q: %v\n", tag, err)
				os.Exit(1)
			}
		}

		fmt.Printf("Removed tag(s) from %d\n", id)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "List tags of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := parseID(args[0])

		tags, err := atlasClient.GetTags(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(tags)
		} else if len(tags) == 0 {
			fmt.Println("no tags")
		} else {
			fmt.Println(strings.Join(tags, "\n"))
		}
		return nil
	},
}

func init() {
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRemoveCmd)
	tagCmd.AddCommand(tagListCmd)
}
