package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/quarrylabs/atlas/internal/client"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update fields of a resource",
	GroupID: "resources",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid resource id %q\n", args[0])
			os.Exit(1)
		}

		req := &client.UpdateResourceRequest{}

		// Only flags the caller set become part of the patch. An org or
		// parent of 0 clears the field server-side.
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			req.Name = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			req.Description = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			req.Status = &v
		}
		if cmd.Flags().Changed("slug") {
			v, _ := cmd.Flags().GetString("slug")
			req.Slug = &v
		}
		if cmd.Flags().Changed("org") {
			v, _ := cmd.Flags().GetInt64("org")
			req.OrganizationID = &v
		}
		if cmd.Flags().Changed("parent") {
			v, _ := cmd.Flags().GetInt64("parent")
			req.ParentID = &v
		}
		if cmd.Flags().Changed("tag") {
			v, _ := cmd.Flags().GetStringSlice("tag")
			if v == nil {
				v = []string{}
			}
			req.Tags = v
		}

		fieldPairs, _ := cmd.Flags().GetStringArray("field")
		metadata, err := parseMetadata(fieldPairs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if metadata != nil {
			req.Metadata = json.RawMessage(metadata)
		}

		res, err := atlasClient.UpdateResource(context.Background(), id, req)
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
	updateCmd.Flags().String("name", "", "new name")
	updateCmd.Flags().StringP("description", "d", "", "new description")
	updateCmd.Flags().StringP("status", "s", "", "new lifecycle status")
	updateCmd.Flags().String("slug", "", "new slug")
	updateCmd.Flags().Int64("org", 0, "owning organization id (0 clears)")
	updateCmd.Flags().Int64("parent", 0, "parent resource id (0 clears)")
	updateCmd.Flags().StringSliceP("tag", "l", nil, "replacement tag set (repeatable)")
	updateCmd.Flags().StringArrayP("field", "f", nil, "metadata field merged into existing metadata (key=value, repeatable)")
}
