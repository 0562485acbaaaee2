package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/quarrylabs/atlas/internal/model"
)

func TestHandleGetConfig_Builtin(t *testing.T) {
	_, _, handler := newTestServer()

	rec := doJSON(t, handler, "GET", "/v1/configs/view:tree", nil)
	requireStatus(t, rec, http.StatusOK)

	var cfg model.Config
	decodeJSON(t, rec, &cfg)
	var value map[string]any
	if err := json.Unmarshal(cfg.Value, &value); err != nil {
		t.Fatalf("failed to unmarshal value: %v", err)
	}
	if value["sort"] != "name" {
		t.Errorf("expected builtin tree default, got %v", value)
	}
}

func TestHandleSetConfig_OverridesBuiltin(t *testing.T) {
	_, _, handler := newTestServer()

	rec := doJSON(t, handler, "PUT", "/v1/configs/view:tree", map[string]any{
		"expand_depth": 4,
		"sort":         "updated_at",
	})
	requireStatus(t, rec, http.StatusOK)

	rec = doJSON(t, handler, "GET", "/v1/configs/view:tree", nil)
	requireStatus(t, rec, http.StatusOK)
	var cfg model.Config
	decodeJSON(t, rec, &cfg)
	var value map[string]any
	if err := json.Unmarshal(cfg.Value, &value); err != nil {
		t.Fatalf("failed to unmarshal value: %v", err)
	}
	if value["sort"] != "updated_at" {
		t.Errorf("expected the stored override, got %v", value)
	}
}

func TestHandleSetConfig_RequiresNamespacedKey(t *testing.T) {
	_, _, handler := newTestServer()

	rec := doJSON(t, handler, "PUT", "/v1/configs/treeview", map[string]any{"x": 1})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestHandleGetConfig_NotFound(t *testing.T) {
	_, _, handler := newTestServer()

	rec := doJSON(t, handler, "GET", "/v1/configs/view:nonexistent", nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestHandleListConfigs_MergesBuiltins(t *testing.T) {
	_, _, handler := newTestServer()

	rec := doJSON(t, handler, "PUT", "/v1/configs/ipam:prefix-page-size", 100)
	requireStatus(t, rec, http.StatusOK)
	rec = doJSON(t, handler, "PUT", "/v1/configs/view:tree", map[string]any{"sort": "updated_at"})
	requireStatus(t, rec, http.StatusOK)

	rec = doJSON(t, handler, "GET", "/v1/configs", nil)
	requireStatus(t, rec, http.StatusOK)
	var resp struct {
		Configs []*model.Config `json:"configs"`
	}
	decodeJSON(t, rec, &resp)

	byKey := make(map[string]json.RawMessage, len(resp.Configs))
	for _, c := range resp.Configs {
		byKey[c.Key] = c.Value
	}
	if len(byKey) != len(builtinConfigs)+1 {
		t.Errorf("expected builtins plus one custom key, got %v", byKey)
	}
	if string(byKey["ipam:prefix-page-size"]) != "100" {
		t.Errorf("expected custom config in listing, got %s", byKey["ipam:prefix-page-size"])
	}
	// The stored override replaces the builtin value.
	var tree map[string]any
	if err := json.Unmarshal(byKey["view:tree"], &tree); err != nil {
		t.Fatalf("failed to unmarshal view:tree: %v", err)
	}
	if tree["sort"] != "updated_at" {
		t.Errorf("expected stored value to win over builtin, got %v", tree)
	}
}

func TestHandleListConfigs_NamespaceFilter(t *testing.T) {
	_, _, handler := newTestServer()

	rec := doJSON(t, handler, "PUT", "/v1/configs/ipam:prefix-page-size", 100)
	requireStatus(t, rec, http.StatusOK)

	rec = doJSON(t, handler, "GET", "/v1/configs?namespace=view", nil)
	requireStatus(t, rec, http.StatusOK)
	var resp struct {
		Configs []*model.Config `json:"configs"`
	}
	decodeJSON(t, rec, &resp)
	for _, c := range resp.Configs {
		if c.Key == "ipam:prefix-page-size" {
			t.Error("namespace filter leaked a key from another namespace")
		}
	}
}

func TestHandleDeleteConfig_RevertsToBuiltin(t *testing.T) {
	_, _, handler := newTestServer()

	rec := doJSON(t, handler, "PUT", "/v1/configs/view:tree", map[string]any{"sort": "updated_at"})
	requireStatus(t, rec, http.StatusOK)

	rec = doJSON(t, handler, "DELETE", "/v1/configs/view:tree", nil)
	requireStatus(t, rec, http.StatusNoContent)

	rec = doJSON(t, handler, "GET", "/v1/configs/view:tree", nil)
	requireStatus(t, rec, http.StatusOK)
	var cfg model.Config
	decodeJSON(t, rec, &cfg)
	var value map[string]any
	if err := json.Unmarshal(cfg.Value, &value); err != nil {
		t.Fatalf("failed to unmarshal value: %v", err)
	}
	if value["sort"] != "name" {
		t.Errorf("expected builtin default after delete, got %v", value)
	}
}

func TestHandleDeleteConfig_NotFound(t *testing.T) {
	_, _, handler := newTestServer()

	rec := doJSON(t, handler, "DELETE", "/v1/configs/view:nonexistent", nil)
	requireStatus(t, rec, http.StatusNotFound)
}
