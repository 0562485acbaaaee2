package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/quarrylabs/atlas/internal/model"
)

// HTTPClient implements AtlasClient using the atlas HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// --- Resource CRUD ---

func (c *HTTPClient) CreateResource(ctx context.Context, req *CreateResourceRequest) (*model.Resource, error) {
	var resource model.Resource
	if err := c.doJSON(ctx, http.MethodPost, "/v1/resources", req, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (c *HTTPClient) GetResource(ctx context.Context, idOrSlug string) (*model.Resource, error) {
	var resource model.Resource
	if err := c.doJSON(ctx, http.MethodGet, "/v1/resources/"+url.PathEscape(idOrSlug), nil, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (c *HTTPClient) ListResources(ctx context.Context, req *ListResourcesRequest) (*ListResourcesResponse, error) {
	q := url.Values{}
	if len(req.Type) > 0 {
		q.Set("type", strings.Join(req.Type, ","))
	}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if req.OrganizationID != nil {
		q.Set("organization_id", formatID(*req.OrganizationID))
	}
	if req.ParentID != nil {
		q.Set("parent_id", formatID(*req.ParentID))
	}
	if len(req.Tags) > 0 {
		q.Set("tags", strings.Join(req.Tags, ","))
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", strconv.Itoa(req.Offset))
	}

	path := "/v1/resources"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListResourcesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateResource(ctx context.Context, id int64, req *UpdateResourceRequest) (*model.Resource, error) {
	var resource model.Resource
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/resources/"+formatID(id), req, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (c *HTTPClient) DeleteResource(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/resources/"+formatID(id), nil, nil)
}

func (c *HTTPClient) ListChildren(ctx context.Context, id int64) ([]*model.Resource, error) {
	var resp struct {
		Children []*model.Resource `json:"children"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/resources/"+formatID(id)+"/children", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Children, nil
}

// --- Relations ---

func (c *HTTPClient) AddRelation(ctx context.Context, req *AddRelationRequest) (*model.Relation, error) {
	var rel model.Relation
	if err := c.doJSON(ctx, http.MethodPost, "/v1/resources/"+formatID(req.SourceID)+"/relations", req, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

func (c *HTTPClient) RemoveRelation(ctx context.Context, sourceID, targetID int64, relType string) error {
	q := url.Values{}
	q.Set("target_id", formatID(targetID))
	q.Set("type", relType)
	path := "/v1/resources/" + formatID(sourceID) + "/relations?" + q.Encode()
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) GetRelations(ctx context.Context, resourceID int64) ([]*model.Relation, error) {
	var resp struct {
		Relations []*model.Relation `json:"relations"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/resources/"+formatID(resourceID)+"/relations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Relations, nil
}

// --- Tags ---

func (c *HTTPClient) AddTag(ctx context.Context, resourceID int64, tag string) error {
	body := map[string]string{"tag": tag}
	return c.doJSON(ctx, http.MethodPost, "/v1/resources/"+formatID(resourceID)+"/tags", body, nil)
}

func (c *HTTPClient) RemoveTag(ctx context.Context, resourceID int64, tag string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/resources/"+formatID(resourceID)+"/tags/"+url.PathEscape(tag), nil, nil)
}

func (c *HTTPClient) GetTags(ctx context.Context, resourceID int64) ([]string, error) {
	var resp struct {
		Tags []string `json:"tags"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/resources/"+formatID(resourceID)+"/tags", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// --- Events ---

func (c *HTTPClient) GetEvents(ctx context.Context, resourceID int64) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/resources/"+formatID(resourceID)+"/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Graph & tree ---

func (c *HTTPClient) GetGraph(ctx context.Context, req *GraphRequest) (*model.GraphResponse, error) {
	q := url.Values{}
	q.Set("root", req.Root)
	if len(req.Types) > 0 {
		q.Set("types", strings.Join(req.Types, ","))
	}
	if req.IncludeHierarchy != nil {
		q.Set("include_hierarchy", strconv.FormatBool(*req.IncludeHierarchy))
	}
	if req.IncludeDependencies != nil {
		q.Set("include_dependencies", strconv.FormatBool(*req.IncludeDependencies))
	}
	if req.MaxHops > 0 {
		q.Set("max_hops", strconv.Itoa(req.MaxHops))
	}
	if req.MaxNodes > 0 {
		q.Set("max_nodes", strconv.Itoa(req.MaxNodes))
	}

	var resp model.GraphResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/graph?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetTree(ctx context.Context, req *TreeRequest) (*TreeResponse, error) {
	q := url.Values{}
	if len(req.Type) > 0 {
		q.Set("type", strings.Join(req.Type, ","))
	}
	if req.OrganizationID != nil {
		q.Set("organization_id", formatID(*req.OrganizationID))
	}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}

	path := "/v1/tree"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp TreeResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Stats ---

func (c *HTTPClient) GetStats(ctx context.Context) (*model.InventoryStats, error) {
	var stats model.InventoryStats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// --- Config ---

func (c *HTTPClient) SetConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error) {
	var config model.Config
	if err := c.doJSON(ctx, http.MethodPut, "/v1/configs/"+key, value, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *HTTPClient) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	var config model.Config
	if err := c.doJSON(ctx, http.MethodGet, "/v1/configs/"+key, nil, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *HTTPClient) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	var resp struct {
		Configs []*model.Config `json:"configs"`
	}
	path := "/v1/configs"
	if namespace != "" {
		path += "?namespace=" + url.QueryEscape(namespace)
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

func (c *HTTPClient) DeleteConfig(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/configs/"+key, nil, nil)
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content, success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
