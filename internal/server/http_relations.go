package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/quarrylabs/atlas/internal/events"
	"github.com/quarrylabs/atlas/internal/model"
)

// handleGetRelations handles GET /v1/resources/{id}/relations.
func (s *AtlasServer) handleGetRelations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	relations, err := s.store.GetRelations(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"relations": relations})
}

// addRelationInput is the request body for POST /v1/resources/{id}/relations.
type addRelationInput struct {
	TargetID  int64  `json:"target_id"`
	Type      string `json:"type"`
	Note      string `json:"note"`
	CreatedBy string `json:"created_by"`
}

// handleAddRelation handles POST /v1/resources/{id}/relations. The path id is
// the relation source.
func (s *AtlasServer) handleAddRelation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in addRelationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.TargetID <= 0 {
		writeError(w, http.StatusBadRequest, "target_id is required")
		return
	}
	if in.TargetID == id {
		writeError(w, http.StatusBadRequest, "a resource cannot relate to itself")
		return
	}
	relType := model.RelationType(in.Type)
	if !relType.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid relation type")
		return
	}

	// The target must exist; the FK would catch this but a 400 is the
	// right answer, not a 500.
	if _, err := s.store.GetResource(r.Context(), in.TargetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "target resource not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rel := &model.Relation{
		SourceID:  id,
		TargetID:  in.TargetID,
		Type:      relType,
		CreatedBy: in.CreatedBy,
		Note:      in.Note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddRelation(r.Context(), rel); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordAndPublish(r.Context(), events.TopicRelationAdded, id, in.CreatedBy, events.RelationAdded{Relation: rel})

	writeJSON(w, http.StatusCreated, rel)
}

// handleRemoveRelation handles DELETE /v1/resources/{id}/relations with
// target_id and type query parameters.
func (s *AtlasServer) handleRemoveRelation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	targetID, err := strconv.ParseInt(q.Get("target_id"), 10, 64)
	if err != nil || targetID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid target_id")
		return
	}
	relType := model.RelationType(q.Get("type"))
	if !relType.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid relation type")
		return
	}

	if err := s.store.RemoveRelation(r.Context(), id, targetID, relType); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordAndPublish(r.Context(), events.TopicRelationRemoved, id, "", events.RelationRemoved{
		SourceID: id,
		TargetID: targetID,
		Type:     string(relType),
	})

	w.WriteHeader(http.StatusNoContent)
}

// handleGetTags handles GET /v1/resources/{id}/tags.
func (s *AtlasServer) handleGetTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tags, err := s.store.GetTags(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// addTagInput is the request body for POST /v1/resources/{id}/tags.
type addTagInput struct {
	Tag string `json:"tag"`
}

// handleAddTag handles POST /v1/resources/{id}/tags.
func (s *AtlasServer) handleAddTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in addTagInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Tag == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}

	if err := s.store.AddTag(r.Context(), id, in.Tag); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordAndPublish(r.Context(), events.TopicTagAdded, id, "", events.TagAdded{ResourceID: id, Tag: in.Tag})

	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveTag handles DELETE /v1/resources/{id}/tags/{tag}.
func (s *AtlasServer) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tag := r.PathValue("tag")
	if tag == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}

	if err := s.store.RemoveTag(r.Context(), id, tag); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordAndPublish(r.Context(), events.TopicTagRemoved, id, "", events.TagRemoved{ResourceID: id, Tag: tag})

	w.WriteHeader(http.StatusNoContent)
}
