package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *AtlasServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/resources", s.handleCreateResource)
	mux.HandleFunc("GET /v1/resources", s.handleListResources)
	mux.HandleFunc("GET /v1/resources/{id}", s.handleGetResource)
	mux.HandleFunc("PATCH /v1/resources/{id}", s.handleUpdateResource)
	mux.HandleFunc("DELETE /v1/resources/{id}", s.handleDeleteResource)
	mux.HandleFunc("GET /v1/resources/{id}/children", s.handleListChildren)
	mux.HandleFunc("GET /v1/resources/{id}/relations", s.handleGetRelations)
	mux.HandleFunc("POST /v1/resources/{id}/relations", s.handleAddRelation)
	mux.HandleFunc("DELETE /v1/resources/{id}/relations", s.handleRemoveRelation)
	mux.HandleFunc("GET /v1/resources/{id}/tags", s.handleGetTags)
	mux.HandleFunc("POST /v1/resources/{id}/tags", s.handleAddTag)
	mux.HandleFunc("DELETE /v1/resources/{id}/tags/{tag}", s.handleRemoveTag)
	mux.HandleFunc("GET /v1/resources/{id}/events", s.handleGetEvents)
	mux.HandleFunc("GET /v1/graph", s.handleGetGraph)
	mux.HandleFunc("GET /v1/tree", s.handleGetTree)
	mux.HandleFunc("GET /v1/stats", s.handleGetStats)
	mux.HandleFunc("PUT /v1/configs/{key...}", s.handleSetConfig)
	mux.HandleFunc("GET /v1/configs/{key...}", s.handleGetConfig)
	mux.HandleFunc("GET /v1/configs", s.handleListConfigs)
	mux.HandleFunc("DELETE /v1/configs/{key...}", s.handleDeleteConfig)
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	var h http.Handler = mux
	h = AuthMiddleware(authToken, h)
	h = LoggingMiddleware(h)
	h = RecoveryMiddleware(h)
	return h
}

// handleHealth handles GET /v1/health.
func (s *AtlasServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
