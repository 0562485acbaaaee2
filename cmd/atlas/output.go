package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/quarrylabs/atlas/internal/model"
	"github.com/quarrylabs/atlas/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printResourceTable(res *model.Resource) {
	fmt.Printf("ID:           %d\n", res.ID)
	fmt.Printf("Slug:         %s\n", res.Slug)
	fmt.Printf("Name:         %s\n", res.Name)
	fmt.Printf("Type:         %s\n", res.Type)
	fmt.Printf("Status:       %s\n", ui.RenderStatus(string(res.Status)))
	if res.Description != "" {
		fmt.Printf("Description:  %s\n", res.Description)
	}
	if res.OrganizationID != nil {
		fmt.Printf("Organization: %d\n", *res.OrganizationID)
	}
	if res.ParentID != nil {
		fmt.Printf("Parent:       %d\n", *res.ParentID)
	}
	if len(res.Tags) > 0 {
		fmt.Printf("Tags:         %s\n", strings.Join(res.Tags, ", "))
	}
	if len(res.Metadata) > 0 && string(res.Metadata) != "null" && string(res.Metadata) != "{}" {
		fmt.Printf("Metadata:     %s\n", string(res.Metadata))
	}
	fmt.Printf("Created By:   %s\n", res.CreatedBy)
	fmt.Printf("Created At:   %s\n", res.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated At:   %s\n", res.UpdatedAt.Format("2006-01-02 15:04:05"))
	if len(res.Relations) > 0 {
		fmt.Println("Relations:")
		for _, rel := range res.Relations {
			arrow := "->"
			peer := rel.TargetID
			if rel.TargetID == res.ID {
				arrow = "<-"
				peer = rel.SourceID
			}
			fmt.Printf("  %s %d (%s)\n", arrow, peer, rel.Type)
		}
	}
}

func printResourceListTable(resources []*model.Resource, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tTYPE\tSTATUS\tNAME\tTAGS")
	for _, res := range resources {
		name := res.Name
		if len(name) > 50 {
			name = name[:47] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			res.ID,
			res.Slug,
			res.Type,
			ui.RenderStatus(string(res.Status)),
			name,
			strings.Join(res.Tags, ","),
		)
	}
	w.Flush()
	fmt.Printf("\n%d resources (%d total)\n", len(resources), total)
}

func printRelationsTable(resourceID int64, relations []*model.Relation) {
	if len(relations) == 0 {
		fmt.Println("no relations")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIRECTION\tPEER\tTYPE\tNOTE")
	for _, rel := range relations {
		direction := "outbound"
		peer := rel.TargetID
		if rel.TargetID == resourceID {
			direction = "inbound"
			peer = rel.SourceID
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", direction, peer, rel.Type, rel.Note)
	}
	w.Flush()
}

func printEventsTable(events []*model.Event) {
	if len(events) == 0 {
		fmt.Println("no events")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTOPIC\tACTOR")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			ev.CreatedAt.Format("2006-01-02 15:04:05"),
			ev.Topic,
			ev.Actor,
		)
	}
	w.Flush()
}

func printConfigTable(cfg *model.Config) {
	fmt.Printf("%s\t%s\n", ui.RenderAccent(cfg.Key), string(cfg.Value))
}
