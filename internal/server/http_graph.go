package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/quarrylabs/atlas/internal/graph"
	"github.com/quarrylabs/atlas/internal/model"
	"github.com/quarrylabs/atlas/internal/tree"
)

// handleGetGraph handles GET /v1/graph. Query parameters:
//
//	root                  required, "type:id" of the traversal root
//	types                 comma-separated type filter; empty = all types
//	include_hierarchy     default true
//	include_dependencies  default true
//	max_hops              traversal depth, clamped to [1, 10]
//	max_nodes             node budget, capped by the server-wide limit
func (s *AtlasServer) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	root, err := model.ParseResourceRef(q.Get("root"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := graph.Options{
		IncludeHierarchy:    true,
		IncludeDependencies: true,
		MaxNodes:            s.graphMaxNodes,
	}

	if raw := q.Get("types"); raw != "" {
		opts.AllowedTypes = make(map[model.ResourceType]bool)
		for _, t := range strings.Split(raw, ",") {
			rt := model.ResourceType(strings.TrimSpace(t))
			if !rt.IsValid() {
				writeError(w, http.StatusBadRequest, "unknown resource type "+t)
				return
			}
			opts.AllowedTypes[rt] = true
		}
	}
	if raw := q.Get("include_hierarchy"); raw != "" {
		opts.IncludeHierarchy = raw != "false"
	}
	if raw := q.Get("include_dependencies"); raw != "" {
		opts.IncludeDependencies = raw != "false"
	}
	if raw := q.Get("max_hops"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid max_hops")
			return
		}
		opts.MaxHops = n
	}
	if raw := q.Get("max_nodes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid max_nodes")
			return
		}
		// Clients may shrink the budget but never exceed the server cap.
		if n < s.graphMaxNodes {
			opts.MaxNodes = n
		}
	}

	resp, err := s.assembler.BuildGraph(r.Context(), root, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetTree handles GET /v1/tree. It accepts the same filter query
// parameters as the resource list and returns the matching resources
// assembled into a parent-indexed forest.
func (s *AtlasServer) handleGetTree(w http.ResponseWriter, r *http.Request) {
	filter, err := parseResourceFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Sort == "" {
		filter.Sort = "name"
	}

	resources, total, err := s.store.ListResources(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records := make([]tree.Record, 0, len(resources))
	for _, res := range resources {
		records = append(records, tree.Record{
			ID:       res.ID,
			Kind:     string(res.Type),
			Name:     res.Name,
			ParentID: res.ParentID,
			Payload:  res,
		})
	}
	forest := tree.BuildForest(records)

	writeJSON(w, http.StatusOK, map[string]any{
		"roots": forest,
		"total": total,
	})
}

// handleGetStats handles GET /v1/stats.
func (s *AtlasServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
