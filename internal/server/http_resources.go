package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/quarrylabs/atlas/internal/events"
	"github.com/quarrylabs/atlas/internal/model"
)

// pathID extracts the {id} path value as an int64.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid resource id")
	}
	return id, nil
}

// handleCreateResource handles POST /v1/resources.
func (s *AtlasServer) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	var in createResourceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resource, err := s.createResource(r.Context(), in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resource)
}

// handleListResources handles GET /v1/resources with filter query params.
func (s *AtlasServer) handleListResources(w http.ResponseWriter, r *http.Request) {
	filter, err := parseResourceFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resources, total, err := s.store.ListResources(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resources": resources,
		"total":     total,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
}

// parseResourceFilter builds a ResourceFilter from query parameters.
func parseResourceFilter(r *http.Request) (model.ResourceFilter, error) {
	q := r.URL.Query()
	var filter model.ResourceFilter

	if raw := q.Get("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			rt := model.ResourceType(strings.TrimSpace(t))
			if !rt.IsValid() {
				return filter, errors.New("unknown resource type " + t)
			}
			filter.Type = append(filter.Type, rt)
		}
	}
	if raw := q.Get("status"); raw != "" {
		for _, st := range strings.Split(raw, ",") {
			rs := model.ResourceStatus(strings.TrimSpace(st))
			if !rs.IsValid() {
				return filter, errors.New("unknown status " + st)
			}
			filter.Status = append(filter.Status, rs)
		}
	}
	if raw := q.Get("organization_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errors.New("invalid organization_id")
		}
		filter.OrganizationID = &id
	}
	if raw := q.Get("parent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errors.New("invalid parent_id")
		}
		filter.ParentID = &id
	}
	if raw := q.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}
	filter.Search = q.Get("search")
	filter.Sort = q.Get("sort")

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, errors.New("invalid offset")
		}
		filter.Offset = n
	}

	return filter, nil
}

// handleGetResource handles GET /v1/resources/{id}. The id segment also
// accepts a slug (any non-numeric value).
func (s *AtlasServer) handleGetResource(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")

	var (
		resource *model.Resource
		err      error
	)
	if id, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
		resource, err = s.store.GetResource(r.Context(), id)
	} else {
		resource, err = s.store.GetResourceBySlug(r.Context(), raw)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

// handleUpdateResource handles PATCH /v1/resources/{id}.
func (s *AtlasServer) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in updateResourceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.organizationSet = in.OrganizationID != nil
	in.parentSet = in.ParentID != nil
	in.tagsSet = in.Tags != nil

	resource, err := s.updateResource(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

// handleDeleteResource handles DELETE /v1/resources/{id}.
func (s *AtlasServer) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteResource(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordAndPublish(r.Context(), events.TopicResourceDeleted, id, "", events.ResourceDeleted{ResourceID: id})

	w.WriteHeader(http.StatusNoContent)
}

// handleListChildren handles GET /v1/resources/{id}/children.
func (s *AtlasServer) handleListChildren(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	children, err := s.store.ListChildren(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"children": children})
}

// handleGetEvents handles GET /v1/resources/{id}/events.
func (s *AtlasServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	evts, err := s.store.GetEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}
