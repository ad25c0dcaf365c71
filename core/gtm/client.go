package gtm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gtm-sync/core/retry"

	"go.uber.org/zap"
)

// Workspace is a resolved target workspace.
type Workspace struct {
	Name string
	ID   string
	Path string
}

// Service is the remote directory surface the reconciler consumes. Every
// list call returns the complete collection (pagination is handled
// internally); every mutation accepts/returns the opaque fingerprint used for
// optimistic concurrency.
type Service interface {
	// EnsureWorkspace resolves a workspace by name under an account and
	// container, optionally creating it when absent.
	EnsureWorkspace(ctx context.Context, accountID, containerID, name string, createIfMissing bool) (*Workspace, error)
	// List returns all entities of a collection under parent.
	List(ctx context.Context, parent, collection string) ([]map[string]any, error)
	// Create creates an entity and returns the server payload, including
	// the assigned id.
	Create(ctx context.Context, parent, collection string, body map[string]any) (map[string]any, error)
	// Update replaces an entity by API path. A non-empty fingerprint asks
	// the server to reject the write if the entity changed since it was
	// read.
	Update(ctx context.Context, path string, body map[string]any, fingerprint string) (map[string]any, error)
	// Delete removes an entity by API path.
	Delete(ctx context.Context, path string) error
	// ListEnabledBuiltIns returns the enabled built-in variable type
	// identifiers for a workspace.
	ListEnabledBuiltIns(ctx context.Context, parent string) ([]string, error)
	// EnableBuiltIn enables one built-in variable type.
	EnableBuiltIn(ctx context.Context, parent, builtInType string) error
	// DisableBuiltIn disables one built-in variable type.
	DisableBuiltIn(ctx context.Context, parent, builtInType string) error
	// MoveEntitiesToFolder moves the given entities into a folder by id.
	MoveEntitiesToFolder(ctx context.Context, folderPath string, tagIDs, triggerIDs, variableIDs []string) error
}

// listItemFields maps a collection segment to the response field holding its
// items.
var listItemFields = map[string]string{
	"workspaces":         "workspace",
	"environments":       "environment",
	"templates":          "template",
	"variables":          "variable",
	"clients":            "client",
	"transformations":    "transformation",
	"triggers":           "trigger",
	"zones":              "zone",
	"tags":               "tag",
	"folders":            "folder",
	"built_in_variables": "builtInVariable",
}

// Client is the REST implementation of Service.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	accessToken string
	log         *zap.Logger
	readPolicy  retry.Policy
	writePolicy retry.Policy
}

var _ Service = (*Client)(nil)

// NewClient creates a Tag Manager API client from the configuration.
func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	readPolicy := retry.ReadPolicy(IsRetryable)
	if cfg.ReadRetries > 0 {
		readPolicy.MaxRetries = cfg.ReadRetries
	}
	writePolicy := retry.WritePolicy(IsRetryable)
	if cfg.WriteRetries > 0 {
		writePolicy.MaxRetries = cfg.WriteRetries
	}

	return &Client{
		httpClient:  &http.Client{Transport: transport},
		endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
		accessToken: cfg.AccessToken,
		log:         log,
		readPolicy:  readPolicy,
		writePolicy: writePolicy,
	}
}

func (c *Client) EnsureWorkspace(ctx context.Context, accountID, containerID, name string, createIfMissing bool) (*Workspace, error) {
	parent := fmt.Sprintf("accounts/%s/containers/%s", accountID, containerID)
	items, err := c.List(ctx, parent, "workspaces")
	if err != nil {
		return nil, err
	}
	wanted := strings.ToLower(strings.TrimSpace(name))
	for _, item := range items {
		if itemName, _ := item["name"].(string); strings.ToLower(strings.TrimSpace(itemName)) == wanted {
			return workspaceFromMap(parent, item)
		}
	}
	if !createIfMissing {
		return nil, fmt.Errorf("workspace %q not found under %s", name, parent)
	}
	c.log.Info("creating workspace", zap.String("name", name), zap.String("parent", parent))
	created, err := c.Create(ctx, parent, "workspaces", map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("cannot create workspace %q: %w", name, err)
	}
	return workspaceFromMap(parent, created)
}

func (c *Client) List(ctx context.Context, parent, collection string) ([]map[string]any, error) {
	field, ok := listItemFields[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	var items []map[string]any
	pageToken := ""
	for {
		query := url.Values{}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}
		var page map[string]any
		if err := c.do(ctx, http.MethodGet, parent+"/"+collection, query, nil, &page, c.readPolicy); err != nil {
			return nil, err
		}
		raw, _ := page[field].([]any)
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				items = append(items, m)
			}
		}
		token, _ := page["nextPageToken"].(string)
		if token == "" {
			return items, nil
		}
		pageToken = token
	}
}

func (c *Client) Create(ctx context.Context, parent, collection string, body map[string]any) (map[string]any, error) {
	var created map[string]any
	if err := c.do(ctx, http.MethodPost, parent+"/"+collection, nil, body, &created, c.writePolicy); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) Update(ctx context.Context, path string, body map[string]any, fingerprint string) (map[string]any, error) {
	query := url.Values{}
	if fingerprint != "" {
		query.Set("fingerprint", fingerprint)
	}
	var updated map[string]any
	if err := c.do(ctx, http.MethodPut, path, query, body, &updated, c.writePolicy); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, c.writePolicy)
}

func (c *Client) ListEnabledBuiltIns(ctx context.Context, parent string) ([]string, error) {
	items, err := c.List(ctx, parent, "built_in_variables")
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(items))
	for _, item := range items {
		if typ, _ := item["type"].(string); typ != "" {
			types = append(types, typ)
		}
	}
	return types, nil
}

func (c *Client) EnableBuiltIn(ctx context.Context, parent, builtInType string) error {
	query := url.Values{}
	query.Set("type", builtInType)
	return c.do(ctx, http.MethodPost, parent+"/built_in_variables", query, nil, nil, c.writePolicy)
}

func (c *Client) DisableBuiltIn(ctx context.Context, parent, builtInType string) error {
	query := url.Values{}
	query.Set("type", builtInType)
	return c.do(ctx, http.MethodDelete, parent+"/built_in_variables", query, nil, nil, c.writePolicy)
}

func (c *Client) MoveEntitiesToFolder(ctx context.Context, folderPath string, tagIDs, triggerIDs, variableIDs []string) error {
	query := url.Values{}
	for _, id := range tagIDs {
		query.Add("tagId", id)
	}
	for _, id := range triggerIDs {
		query.Add("triggerId", id)
	}
	for _, id := range variableIDs {
		query.Add("variableId", id)
	}
	return c.do(ctx, http.MethodPost, folderPath+":move_entities_to_folder", query, nil, nil, c.writePolicy)
}

// do performs one API call under the given retry policy. The request is
// rebuilt on every attempt so the body can be resent.
func (c *Client) do(ctx context.Context, method, apiPath string, query url.Values, body map[string]any, out any, policy retry.Policy) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cannot encode request body: %w", err)
		}
	}

	requestURL := c.endpoint + "/" + apiPath
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	return retry.Do(ctx, policy, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
		if err != nil {
			return err
		}
		if c.accessToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.accessToken)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 {
			apiErr := parseAPIError(resp.StatusCode, data)
			c.log.Debug("gtm api call failed",
				zap.String("method", method),
				zap.String("path", apiPath),
				zap.Int("status", resp.StatusCode),
				zap.String("message", apiErr.Message),
			)
			return apiErr
		}
		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("cannot decode response from %s: %w", apiPath, err)
			}
		}
		return nil
	})
}

func workspaceFromMap(parent string, m map[string]any) (*Workspace, error) {
	ws := &Workspace{}
	ws.Name, _ = m["name"].(string)
	ws.ID, _ = m["workspaceId"].(string)
	ws.Path, _ = m["path"].(string)
	if ws.Path == "" && ws.ID != "" {
		ws.Path = parent + "/workspaces/" + ws.ID
	}
	if ws.Path == "" {
		return nil, fmt.Errorf("workspace response missing path and workspaceId")
	}
	return ws, nil
}
