package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/quarrylabs/atlas/internal/model"
)

// builtinConfigs holds the default configuration entries served when no
// stored value overrides them. Keys follow the "{namespace}:{name}" format.
var builtinConfigs = map[string]json.RawMessage{
	"view:resource-map":  json.RawMessage(`{"layout":"force","group_by":"organization","show_retired":false}`),
	"view:tree":          json.RawMessage(`{"expand_depth":2,"sort":"name"}`),
	"view:resource-list": json.RawMessage(`{"columns":["name","type","status","tags","updated_at"],"page_size":50}`),
	"graph:defaults":     json.RawMessage(`{"max_hops":2,"include_hierarchy":true,"include_dependencies":true}`),
}

// getConfigWithBuiltins returns the stored config for key, or the builtin
// default when nothing is stored.
func (s *AtlasServer) getConfigWithBuiltins(r *http.Request, key string) (*model.Config, error) {
	cfg, err := s.store.GetConfig(r.Context(), key)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if value, ok := builtinConfigs[key]; ok {
		return &model.Config{Key: key, Value: value}, nil
	}
	return nil, nil
}

// listConfigsWithBuiltins merges stored configs over builtin defaults.
// Stored values win; builtins fill the gaps. The result is sorted by key.
func listConfigsWithBuiltins(stored []*model.Config, namespace string) []*model.Config {
	byKey := make(map[string]*model.Config, len(stored)+len(builtinConfigs))
	for key, value := range builtinConfigs {
		if namespace != "" && !strings.HasPrefix(key, namespace+":") {
			continue
		}
		byKey[key] = &model.Config{Key: key, Value: value}
	}
	for _, cfg := range stored {
		byKey[cfg.Key] = cfg
	}

	merged := make([]*model.Config, 0, len(byKey))
	for _, cfg := range byKey {
		merged = append(merged, cfg)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Key < merged[j].Key })
	return merged
}

// handleSetConfig handles PUT /v1/configs/{key}.
func (s *AtlasServer) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" || !strings.Contains(key, ":") {
		writeError(w, http.StatusBadRequest, "config key must use the namespace:name format")
		return
	}

	var value json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON value")
		return
	}

	cfg := &model.Config{Key: key, Value: value}
	if err := s.store.SetConfig(r.Context(), cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// handleGetConfig handles GET /v1/configs/{key}.
func (s *AtlasServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	cfg, err := s.getConfigWithBuiltins(r, key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cfg == nil {
		writeError(w, http.StatusNotFound, "config not found")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// handleListConfigs handles GET /v1/configs with an optional namespace filter.
func (s *AtlasServer) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	namespace := r.URL.Query().Get("namespace")

	var (
		stored []*model.Config
		err    error
	)
	if namespace != "" {
		stored, err = s.store.ListConfigs(r.Context(), namespace)
	} else {
		stored, err = s.store.ListAllConfigs(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"configs": listConfigsWithBuiltins(stored, namespace),
	})
}

// handleDeleteConfig handles DELETE /v1/configs/{key}. Deleting a key with a
// builtin default reverts it to the default rather than removing it.
func (s *AtlasServer) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if err := s.store.DeleteConfig(r.Context(), key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "config not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
