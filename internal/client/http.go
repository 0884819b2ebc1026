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

	"github.com/kigopro/kigo/internal/assistant"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// HTTPClient implements Client using the Kigo HTTP/JSON REST API. It also
// covers the writes and assistant sessions the gRPC service does not.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

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

// --- Lists ---

// listQuery encodes req as the list query parameters.
func listQuery(req ListRequest) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	f := req.Filters
	set("q", req.Query)
	set("filter", req.Filter)
	set("preset", req.Preset)
	set("status", strings.Join(f.Status, ","))
	set("type", strings.Join(f.Types, ","))
	if !f.DateRange.Start.IsZero() {
		set("from", f.DateRange.Start.String())
	}
	if !f.DateRange.End.IsZero() {
		set("to", f.DateRange.End.String())
	}
	set("merchant", f.FieldText)
	if f.MinValue != nil {
		set("min_value", f.MinValue.String())
	}
	set("sort", req.Sort.String())
	if p := req.Pagination.CurrentPage; p > 0 {
		set("page", strconv.Itoa(p))
	}
	if n := req.Pagination.PageSize; n > 0 {
		set("page_size", strconv.Itoa(n))
	}
	return q
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func getList[T any](c *HTTPClient, ctx context.Context, path string, req ListRequest) (*listing.Response[T], error) {
	var resp listing.Response[T]
	if err := c.doJSON(ctx, http.MethodGet, withQuery(path, listQuery(req)), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SearchCustomers(ctx context.Context, req ListRequest) (*listing.Response[*model.Customer], error) {
	return getList[*model.Customer](c, ctx, "/v1/customers", req)
}

func (c *HTTPClient) ListTokens(ctx context.Context, customerID string, req ListRequest) (*listing.Response[*model.Token], error) {
	return getList[*model.Token](c, ctx, "/v1/customers/"+url.PathEscape(customerID)+"/tokens", req)
}

func (c *HTTPClient) ListCatalog(ctx context.Context, req ListRequest) (*listing.Response[*model.Token], error) {
	return getList[*model.Token](c, ctx, "/v1/tokens/catalog", req)
}

func (c *HTTPClient) ListAds(ctx context.Context, req ListRequest) (*listing.Response[*model.Ad], error) {
	return getList[*model.Ad](c, ctx, "/v1/ads", req)
}

func (c *HTTPClient) ListAdGroups(ctx context.Context, req ListRequest) (*listing.Response[*model.AdGroup], error) {
	return getList[*model.AdGroup](c, ctx, "/v1/ad-groups", req)
}

func (c *HTTPClient) ListCampaigns(ctx context.Context, req ListRequest) (*listing.Response[*model.Campaign], error) {
	return getList[*model.Campaign](c, ctx, "/v1/campaigns", req)
}

// ListPresets returns the presets offered for a collection kind
// ("tokens", "ads", "ad-groups" or "campaigns").
func (c *HTTPClient) ListPresets(ctx context.Context, kind string) ([]PresetInfo, error) {
	var resp struct {
		Presets []PresetInfo `json:"presets"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/presets/"+url.PathEscape(kind), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Presets, nil
}

// --- Tokens ---

func (c *HTTPClient) GetToken(ctx context.Context, id string) (*model.Token, error) {
	var t model.Token
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tokens/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) ReissueToken(ctx context.Context, id string, req *SupportRequest) (*ReissueResponse, error) {
	var resp ReissueResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tokens/"+url.PathEscape(id)+"/reissue", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DisputeToken(ctx context.Context, id string, req *SupportRequest) (*model.Token, error) {
	var t model.Token
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tokens/"+url.PathEscape(id)+"/dispute", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// --- Ad groups and campaigns ---

func (c *HTTPClient) CreateAdGroup(ctx context.Context, g *model.AdGroup) (*model.AdGroup, error) {
	var out model.AdGroup
	if err := c.doJSON(ctx, http.MethodPost, "/v1/ad-groups", g, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateCampaign(ctx context.Context, cp *model.Campaign) (*model.Campaign, error) {
	var out model.Campaign
	if err := c.doJSON(ctx, http.MethodPost, "/v1/campaigns", cp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Assistant ---

func (c *HTTPClient) CreateSession(ctx context.Context, owner assistant.Owner) (*assistant.Snapshot, error) {
	var snap assistant.Snapshot
	if err := c.doJSON(ctx, http.MethodPost, "/v1/assistant/sessions", owner, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SendEvent applies ev to a session. When the server rejects the event the
// returned snapshot is the unchanged session and err is an *APIError.
func (c *HTTPClient) SendEvent(ctx context.Context, sessionID string, ev assistant.Event) (*assistant.Snapshot, error) {
	var snap assistant.Snapshot
	err := c.doJSON(ctx, http.MethodPost, "/v1/assistant/sessions/"+url.PathEscape(sessionID)+"/events", ev, &snap)
	if err != nil {
		if ae, ok := err.(*APIError); ok && ae.Session != nil {
			return ae.Session, err
		}
		return nil, err
	}
	return &snap, nil
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
	Fields     []model.FieldError  // validation failures, if any
	Session    *assistant.Snapshot // unchanged session of a rejected assistant event
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
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

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error   string              `json:"error"`
			Fields  []model.FieldError  `json:"fields"`
			Session *assistant.Snapshot `json:"session"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    errResp.Error,
				Fields:     errResp.Fields,
				Session:    errResp.Session,
			}
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
