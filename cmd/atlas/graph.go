package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/quarrylabs/atlas/internal/client"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:     "graph <root>",
	Short:   "Show the relationship graph around a resource (root is type:id)",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		types, _ := cmd.Flags().GetStringSlice("type")
		noHierarchy, _ := cmd.Flags().GetBool("no-hierarchy")
		noDeps, _ := cmd.Flags().GetBool("no-deps")
		maxHops, _ := cmd.Flags().GetInt("max-hops")
		maxNodes, _ := cmd.Flags().GetInt("max-nodes")

		req := &client.GraphRequest{
			Root:     args[0],
			Types:    types,
			MaxHops:  maxHops,
			MaxNodes: maxNodes,
		}
		if noHierarchy {
			f := false
			req.IncludeHierarchy = &f
		}
		if noDeps {
			f := false
			req.IncludeDependencies = &f
		}

		resp, err := atlasClient.GetGraph(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tTYPE\tLABEL")
		for _, n := range resp.Nodes {
			fmt.Fprintf(w, "%s\t%s\t%s\n", n.Key, n.Type, n.Label)
		}
		w.Flush()

		if len(resp.Edges) > 0 {
			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FROM\tTO\tKIND\tLABEL")
			for _, e := range resp.Edges {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.From, e.To, e.Kind, e.Label)
			}
			w.Flush()
		}

		fmt.Printf("\n%d nodes, %d edges", resp.Stats.NodeCount, resp.Stats.EdgeCount)
		if resp.Stats.Truncated {
			fmt.Print(" (truncated)")
		}
		fmt.Println()
		return nil
	},
}

func init() {
	graphCmd.Flags().StringSliceP("type", "t", nil, "restrict to resource types (repeatable)")
	graphCmd.Flags().Bool("no-hierarchy", false, "exclude parent/child edges")
	graphCmd.Flags().Bool("no-deps", false, "exclude dependency edges")
	graphCmd.Flags().Int("max-hops", 0, "traversal depth (server default when 0)")
	graphCmd.Flags().Int("max-nodes", 0, "node budget (server default when 0)")
}
