package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/quarrylabs/atlas/internal/client"
	"github.com/spf13/cobra"
)

var relCmd = &cobra.Command{
	Use:     "rel",
	Short:   "Manage resource relations",
	GroupID: "resources",
}

func parseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid resource id %q\n", arg)
		os.Exit(1)
	}
	return id
}

var relAddCmd = &cobra.Command{
	Use:   "add <source-id> <target-id>",
	Short: "Add a relation between two resources",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceID := parseID(args[0])
		targetID := parseID(args[1])
		relType, _ := cmd.Flags().GetString("type")
		note, _ := cmd.Flags().GetString("note")

		rel, err := atlasClient.AddRelation(context.Background(), &client.AddRelationRequest{
			SourceID:  sourceID,
			TargetID:  targetID,
			Type:      relType,
			Note:      note,
			CreatedBy: actor,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(rel)
		} else {
			fmt.Printf("Added relation %d -(%s)-> %d\n", rel.SourceID, rel.Type, rel.TargetID)
		}
		return nil
	},
}

var relRemoveCmd = &cobra.Command{
	Use:     "remove <source-id> <target-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a relation between two resources",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceID := parseID(args[0])
		targetID := parseID(args[1])
		relType, _ := cmd.Flags().GetString("type")

		if err := atlasClient.RemoveRelation(context.Background(), sourceID, targetID, relType); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Removed relation %d -(%s)-> %d\n", sourceID, relType, targetID)
		return nil
	},
}

var relListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "List relations of a resource (both directions)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := parseID(args[0])

		relations, err := atlasClient.GetRelations(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(relations)
		} else {
			printRelationsTable(id, relations)
		}
		return nil
	},
}

func init() {
	relAddCmd.Flags().StringP("type", "t", "depends-on", "relation type")
	relAddCmd.Flags().String("note", "", "free-form note on the relation")
	relRemoveCmd.Flags().StringP("type", "t", "depends-on", "relation type")

	relCmd.AddCommand(relAddCmd)
	relCmd.AddCommand(relRemoveCmd)
	relCmd.AddCommand(relListCmd)
}
