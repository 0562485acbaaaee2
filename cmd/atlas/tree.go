package main

import (
	"context"
	"fmt"
	"os"

	"github.com/quarrylabs/atlas/internal/client"
	"github.com/quarrylabs/atlas/internal/tree"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:     "tree",
	Short:   "Show the resource hierarchy as a tree",
	GroupID: "views",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, _ := cmd.Flags().GetStringSlice("type")
		status, _ := cmd.Flags().GetStringSlice("status")
		orgID, _ := cmd.Flags().GetInt64("org")
		depth, _ := cmd.Flags().GetInt("depth")

		req := &client.TreeRequest{
			Type:   types,
			Status: status,
		}
		if orgID > 0 {
			req.OrganizationID = &orgID
		}

		resp, err := atlasClient.GetTree(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}

		for _, root := range resp.Roots {
			fmt.Printf("%s [%s] (#%d)\n", root.Name, root.Kind, root.ID)
			printTreeChildren(root.Children, "", depth-1)
		}
		fmt.Printf("\n%d resources\n", resp.Total)
		return nil
	},
}

// printTreeChildren renders children with ASCII connectors. A depth of 0
// stops recursion; negative depth means unlimited.
func printTreeChildren(children []*tree.Node, prefix string, depth int) {
	if depth == 0 {
		return
	}
	for i, child := range children {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(children)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		fmt.Printf("%s%s%s [%s] (#%d)\n", prefix, connector, child.Name, child.Kind, child.ID)
		printTreeChildren(child.Children, childPrefix, depth-1)
	}
}

func init() {
	treeCmd.Flags().StringSliceP("type", "t", nil, "restrict to resource types (repeatable)")
	treeCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	treeCmd.Flags().Int64("org", 0, "restrict to an organization")
	treeCmd.Flags().Int("depth", -1, "maximum depth to print (-1 = unlimited)")
}
