package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-cleanhttp"
)

// ErrNotFound indicates a discovery query returned nothing to reconcile
// against.
var ErrNotFound = errors.New("not found")

// API is the Fleet surface the reconciler needs. Reads return decoded
// payloads; writes return the HTTP status only.
type API interface {
	AgentsByQuery(ctx context.Context, kuery string) ([]Agent, error)
	AgentPolicy(ctx context.Context, policyID string) (*FullPolicy, error)
	PoliciesByQuery(ctx context.Context, kuery string, full bool) ([]AgentPolicy, error)
	CreatePackagePolicy(ctx context.Context, req *PackagePolicyRequest) (int, error)
	UpdatePackagePolicy(ctx context.Context, packagePolicyID string, req *PackagePolicyRequest) (int, error)
	DeletePackagePolicy(ctx context.Context, packagePolicyID string) (int, error)
}

// Client talks to the Kibana Fleet API. A single pooled HTTP client is
// shared across all calls so the run reuses connections.
type Client struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
}

var _ API = (*Client)(nil)

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpc:    cleanhttp.DefaultPooledClient(),
	}
}

// AgentsByQuery lists enrolled agents matching a kuery filter.
func (c *Client) AgentsByQuery(ctx context.Context, kuery string) ([]Agent, error) {
	query := url.Values{"kuery": {kuery}}
	var out struct {
		List []Agent `json:"list"`
	}
	if _, err := c.get(ctx, "/api/fleet/agents", query, &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// AgentPolicy fetches the compiled form of an agent policy, with every
// integration flattened into inputs.
func (c *Client) AgentPolicy(ctx context.Context, policyID string) (*FullPolicy, error) {
	var out struct {
		Item FullPolicy `json:"item"`
	}
	path := fmt.Sprintf("/api/fleet/agent_policies/%s/full", url.PathEscape(policyID))
	if _, err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// PoliciesByQuery lists agent policies matching a kuery filter. With full
// set, attached package policies are included in each item.
func (c *Client) PoliciesByQuery(ctx context.Context, kuery string, full bool) ([]AgentPolicy, error) {
	query := url.Values{"kuery": {kuery}}
	if full {
		query.Set("full", "true")
	}
	var out struct {
		Items []AgentPolicy `json:"items"`
	}
	if _, err := c.get(ctx, "/api/fleet/agent_policies", query, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreatePackagePolicy submits a new integration policy and returns the HTTP
// status. Non-2xx statuses are reported as-is; the caller decides whether
// that fails the run.
func (c *Client) CreatePackagePolicy(ctx context.Context, req *PackagePolicyRequest) (int, error) {
	return c.write(ctx, http.MethodPost, "/api/fleet/package_policies", req)
}

// UpdatePackagePolicy replaces an existing integration policy.
func (c *Client) UpdatePackagePolicy(ctx context.Context, packagePolicyID string, req *PackagePolicyRequest) (int, error) {
	path := fmt.Sprintf("/api/fleet/package_policies/%s", url.PathEscape(packagePolicyID))
	return c.write(ctx, http.MethodPut, path, req)
}

// DeletePackagePolicy removes an integration policy.
func (c *Client) DeletePackagePolicy(ctx context.Context, packagePolicyID string) (int, error) {
	path := fmt.Sprintf("/api/fleet/package_policies/%s", url.PathEscape(packagePolicyID))
	return c.write(ctx, http.MethodDelete, path, nil)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("GET %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) write(ctx context.Context, method, path string, body any) (int, error) {
	resp, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	// Drain so the pooled connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("kbn-xsrf", "true")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
