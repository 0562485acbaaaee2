package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/quarrylabs/atlas/internal/client"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <name>",
	Short:   "Create a new resource",
	GroupID: "resources",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		resType, _ := cmd.Flags().GetString("type")
		slug, _ := cmd.Flags().GetString("slug")
		description, _ := cmd.Flags().GetString("description")
		status, _ := cmd.Flags().GetString("status")
		orgID, _ := cmd.Flags().GetInt64("org")
		parentID, _ := cmd.Flags().GetInt64("parent")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		fieldPairs, _ := cmd.Flags().GetStringArray("field")
		metadata, err := parseMetadata(fieldPairs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		req := &client.CreateResourceRequest{
			Name:        name,
			Type:        resType,
			Slug:        slug,
			Description: description,
			Status:      status,
			Metadata:    json.RawMessage(metadata),
			Tags:        tags,
			CreatedBy:   actor,
		}
		if orgID > 0 {
			req.OrganizationID = &orgID
		}
		if parentID > 0 {
			req.ParentID = &parentID
		}

		res, err := atlasClient.CreateResource(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(res)
		} else {
			printResourceTable(res)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("type", "t", "entity", "resource type")
	createCmd.Flags().String("slug", "", "slug (generated when empty)")
	createCmd.Flags().StringP("description", "d", "", "resource description")
	createCmd.Flags().StringP("status", "s", "", "lifecycle status (defaults to active)")
	createCmd.Flags().Int64("org", 0, "owning organization id")
	createCmd.Flags().Int64("parent", 0, "parent resource id")
	createCmd.Flags().StringSliceP("tag", "l", nil, "tags (repeatable)")
	createCmd.Flags().StringArrayP("field", "f", nil, "metadata field (key=value, repeatable)")
}
