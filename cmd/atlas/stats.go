package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show inventory-wide counts",
	GroupID: "views",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := atlasClient.GetStats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(stats)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "organizations:\t%d\n", stats.TotalOrganizations)
		fmt.Fprintf(w, "entities:\t%d\n", stats.TotalEntities)
		fmt.Fprintf(w, "identities:\t%d\n", stats.TotalIdentities)
		fmt.Fprintf(w, "projects:\t%d\n", stats.TotalProjects)
		fmt.Fprintf(w, "milestones:\t%d\n", stats.TotalMilestones)
		fmt.Fprintf(w, "issues:\t%d\n", stats.TotalIssues)
		fmt.Fprintf(w, "relations:\t%d\n", stats.TotalRelations)
		return w.Flush()
	},
}
