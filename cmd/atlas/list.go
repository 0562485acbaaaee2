package main

import (
	"context"
	"fmt"
	"os"

	"github.com/quarrylabs/atlas/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List resources",
	GroupID: "resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		resType, _ := cmd.Flags().GetStringSlice("type")
		status, _ := cmd.Flags().GetStringSlice("status")
		orgID, _ := cmd.Flags().GetInt64("org")
		parentID, _ := cmd.Flags().GetInt64("parent")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		search, _ := cmd.Flags().GetString("search")
		sort, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		req := &client.ListResourcesRequest{
			Type:   resType,
			Status: status,
			Tags:   tags,
			Search: search,
			Sort:   sort,
			Limit:  limit,
			Offset: offset,
		}
		if orgID > 0 {
			req.OrganizationID = &orgID
		}
		if parentID > 0 {
			req.ParentID = &parentID
		}

		resp, err := atlasClient.ListResources(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp.Resources)
		} else {
			printResourceListTable(resp.Resources, resp.Total)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringSliceP("type", "t", nil, "filter by type (repeatable)")
	listCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	listCmd.Flags().Int64("org", 0, "filter by owning organization id")
	listCmd.Flags().Int64("parent", 0, "filter by parent resource id")
	listCmd.Flags().StringSliceP("tag", "l", nil, "filter by tag (repeatable, all must match)")
	listCmd.Flags().String("search", "", "substring match on name and slug")
	listCmd.Flags().String("sort", "", "sort column (name, created_at, updated_at, type, status)")
	listCmd.Flags().Int("limit", 20, "maximum number of resources to return")
	listCmd.Flags().Int("offset", 0, "offset for pagination")
}
