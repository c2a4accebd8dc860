// Package upstream is the HTTP client for the Target admin API. It computes the
// per-call headers (bearer token, API key, workspace, versioned media types),
// classifies failures into categories, and decodes the loosely shaped list
// responses.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"targetkit/internal/platform/metrics"
	"targetkit/internal/platform/tracer"
	"targetkit/pkg/requestcontext"
)

// Media types of the versioned upstream API.
const (
	MediaV1 = "application/vnd.adobe.target.v1+json"
	MediaV2 = "application/vnd.adobe.target.v2+json"
	MediaV3 = "application/vnd.adobe.target.v3+json"
)

// Operation names, used in errors, logs and metrics.
const (
	OpGetOffer         = "get_offer"
	OpListOffers       = "list_offers"
	OpCreateOffer      = "create_offer"
	OpListActivities   = "list_activities"
	OpGetActivity      = "get_activity"
	OpDeleteActivity   = "delete_activity"
	OpPatchActivity    = "patch_activity"
	OpCreateActivity   = "create_activity"
	OpSetActivityState = "set_activity_state"
	OpListProperties   = "list_properties"
	OpToken            = "token"
)

const maxResponseBytes = 8 << 20

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenProvider supplies the bearer token for each call.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client calls the upstream API on behalf of one tenant and API key.
type Client struct {
	baseURL string
	tenant  string
	apiKey  string
	tokens  TokenProvider
	http    HTTPDoer
	tracer  tracer.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(d HTTPDoer) Option {
	return func(c *Client) {
		c.http = d
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	Tenant  string
	APIKey  string
	Timeout time.Duration
}

func NewClient(cfg ClientConfig, tokens TokenProvider, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tenant:  cfg.Tenant,
		apiKey:  cfg.APIKey,
		tokens:  tokens,
		http:    &http.Client{Timeout: cfg.Timeout},
		tracer:  tracer.NewNoop(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tenant returns the tenant the client is bound to.
func (c *Client) Tenant() string {
	return c.tenant
}

// APIKey returns the API key (the client id) the client authenticates with.
func (c *Client) APIKey() string {
	return c.apiKey
}

// Offer is the subset of an upstream offer the resolver hands back.
type Offer struct {
	ID        any    `json:"id"`
	Name      string `json:"name"`
	Content   any    `json:"content"`
	Workspace any    `json:"workspace"`
}

// GetOffer fetches one content offer scoped to workspaceID.
func (c *Client) GetOffer(ctx context.Context, offerID, workspaceID string) (*Offer, error) {
	body, err := c.do(ctx, call{
		op:        OpGetOffer,
		method:    http.MethodGet,
		path:      "/offers/content/" + url.PathEscape(offerID),
		workspace: workspaceID,
		accept:    MediaV2,
		fallback:  "Failed to get offer",
	})
	if err != nil {
		return nil, err
	}
	obj, err := c.object(OpGetOffer, workspaceID, body)
	if err != nil {
		return nil, err
	}
	name, _ := obj["name"].(string)
	return &Offer{ID: obj["id"], Name: name, Content: obj["content"], Workspace: obj["workspace"]}, nil
}

// ListOffers lists the content offers of one workspace.
func (c *Client) ListOffers(ctx context.Context, workspaceID string) ([]Item, error) {
	body, err := c.do(ctx, call{
		op:        OpListOffers,
		method:    http.MethodGet,
		path:      "/offers/content",
		workspace: workspaceID,
		accept:    MediaV1,
		fallback:  "Failed to list offers",
	})
	if err != nil {
		return nil, err
	}
	return c.list(OpListOffers, workspaceID, body, OfferListRules)
}

// CreateOffer creates an HTML content offer in workspaceID.
func (c *Client) CreateOffer(ctx context.Context, workspaceID, name, content string) (Item, error) {
	body, err := c.do(ctx, call{
		op:          OpCreateOffer,
		method:      http.MethodPost,
		path:        "/offers/content",
		workspace:   workspaceID,
		accept:      MediaV2,
		contentType: MediaV2,
		body:        map[string]string{"name": name, "content": content, "workspace": workspaceID},
		fallback:    "Failed to create offer",
	})
	if err != nil {
		return nil, err
	}
	return c.object(OpCreateOffer, workspaceID, body)
}

// ListActivities lists the activities of one workspace.
func (c *Client) ListActivities(ctx context.Context, workspaceID string) ([]Item, error) {
	body, err := c.do(ctx, call{
		op:        OpListActivities,
		method:    http.MethodGet,
		path:      "/activities",
		workspace: workspaceID,
		accept:    MediaV1,
		fallback:  "Failed to list activities",
	})
	if err != nil {
		return nil, err
	}
	return c.list(OpListActivities, workspaceID, body, ActivityListRules)
}

// GetActivity fetches the full A/B activity definition.
func (c *Client) GetActivity(ctx context.Context, activityID string) (Item, error) {
	body, err := c.do(ctx, call{
		op:       OpGetActivity,
		method:   http.MethodGet,
		path:     "/activities/ab/" + url.PathEscape(activityID),
		accept:   MediaV3,
		fallback: "Failed to get activity",
	})
	if err != nil {
		return nil, err
	}
	return c.object(OpGetActivity, "", body)
}

// DeleteActivity removes an A/B activity upstream.
func (c *Client) DeleteActivity(ctx context.Context, activityID string) error {
	_, err := c.do(ctx, call{
		op:       OpDeleteActivity,
		method:   http.MethodDelete,
		path:     "/activities/ab/" + url.PathEscape(activityID),
		accept:   MediaV3,
		fallback: "Failed to delete activity",
	})
	return err
}

// PatchActivity sends a partial update of an A/B activity in workspaceID.
// An empty success body yields a nil item.
func (c *Client) PatchActivity(ctx context.Context, activityID, workspaceID string, patch any) (Item, error) {
	body, err := c.do(ctx, call{
		op:          OpPatchActivity,
		method:      http.MethodPatch,
		path:        "/activities/ab/" + url.PathEscape(activityID),
		workspace:   workspaceID,
		accept:      MediaV3,
		contentType: MediaV3,
		body:        patch,
		fallback:    "Failed to update options",
	})
	if err != nil {
		return nil, err
	}
	return optionalObject(body), nil
}

// CreateActivity posts a new A/B activity definition into workspaceID.
func (c *Client) CreateActivity(ctx context.Context, workspaceID string, payload any) (Item, error) {
	body, err := c.do(ctx, call{
		op:          OpCreateActivity,
		method:      http.MethodPost,
		path:        "/activities/ab",
		workspace:   workspaceID,
		accept:      MediaV3,
		contentType: MediaV3,
		body:        payload,
		fallback:    "Failed to create activity",
	})
	if err != nil {
		return nil, err
	}
	return c.object(OpCreateActivity, workspaceID, body)
}

// SetActivityState moves an activity to state. An empty or non-object
// success body yields a nil item.
func (c *Client) SetActivityState(ctx context.Context, activityID, state string) (Item, error) {
	body, err := c.do(ctx, call{
		op:          OpSetActivityState,
		method:      http.MethodPut,
		path:        "/activities/" + url.PathEscape(activityID) + "/state",
		contentType: MediaV1,
		body:        map[string]string{"state": state},
		fallback:    "Failed to update activity state",
	})
	if err != nil {
		return nil, err
	}
	return optionalObject(body), nil
}

// ListProperties lists every property of the tenant across workspaces.
func (c *Client) ListProperties(ctx context.Context) ([]Item, error) {
	body, err := c.do(ctx, call{
		op:       OpListProperties,
		method:   http.MethodGet,
		path:     "/properties",
		accept:   MediaV1,
		fallback: "Failed to list properties",
	})
	if err != nil {
		return nil, err
	}
	return c.list(OpListProperties, "", body, PropertyListRules)
}

type call struct {
	op          string
	method      string
	path        string
	workspace   string
	accept      string
	contentType string
	body        any
	fallback    string
}

// do executes one upstream call and returns the body of a 2xx answer.
// Everything else comes back as *Error.
func (c *Client) do(ctx context.Context, cl call) (respBody []byte, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanUpstreamCall,
		tracer.String(tracer.AttrOperation, cl.op),
		tracer.String(tracer.AttrWorkspaceID, cl.workspace),
	)
	defer func() { span.End(err) }()

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/" + url.PathEscape(c.tenant) + "/target" + cl.path
	if cl.workspace != "" {
		endpoint += "?workspace=" + url.QueryEscape(cl.workspace)
	}

	var reqBody io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return nil, &Error{Category: CategoryInternal, Operation: cl.op, Workspace: cl.workspace, Message: "failed to marshal request", Underlying: err}
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, reqBody)
	if err != nil {
		return nil, &Error{Category: CategoryInternal, Operation: cl.op, Workspace: cl.workspace, Message: "failed to create request", Underlying: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Api-Key", c.apiKey)
	if cl.workspace != "" {
		req.Header.Set("X-Admin-Workspace-Id", cl.workspace)
	}
	if cl.accept != "" {
		req.Header.Set("Accept", cl.accept)
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(cl.op, 0, start)
		category := CategoryUnavailable
		message := "failed to execute request"
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			category = CategoryTimeout
			message = "request timeout"
		}
		c.logger.WarnContext(ctx, "upstream call failed",
			"operation", cl.op,
			"workspace_id", cl.workspace,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, &Error{Category: category, Operation: cl.op, Workspace: cl.workspace, Message: message, Underlying: err}
	}
	defer resp.Body.Close()

	respBody, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.observe(cl.op, resp.StatusCode, start)
	span.SetAttributes(tracer.Int(tracer.AttrStatus, resp.StatusCode))
	if err != nil {
		return nil, &Error{Category: CategoryBadData, Operation: cl.op, Workspace: cl.workspace, Status: resp.StatusCode, Message: "failed to read response", Underlying: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "upstream call rejected",
			"operation", cl.op,
			"workspace_id", cl.workspace,
			"status", resp.StatusCode,
			"body", excerpt(respBody, 300),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, &Error{
			Category:  CategoryForStatus(resp.StatusCode),
			Operation: cl.op,
			Workspace: cl.workspace,
			Status:    resp.StatusCode,
			Message:   BestMessage(respBody, cl.fallback),
			Body:      respBody,
		}
	}

	c.logger.DebugContext(ctx, "upstream call",
		"operation", cl.op,
		"workspace_id", cl.workspace,
		"status", resp.StatusCode,
		"request_id", requestcontext.RequestID(ctx),
	)
	return respBody, nil
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveUpstreamCall(op, status, time.Since(start).Seconds())
	}
}

func (c *Client) object(op, workspaceID string, body []byte) (Item, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, &Error{Category: CategoryBadData, Operation: op, Workspace: workspaceID, Message: "unexpected response body", Body: body, Underlying: err}
	}
	return obj, nil
}

// optionalObject decodes a success body that may legitimately be empty.
func optionalObject(body []byte) Item {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	obj, err := decodeObject(body)
	if err != nil {
		return nil
	}
	return obj
}

func (c *Client) list(op, workspaceID string, body []byte, rules []ListRule) ([]Item, error) {
	items, err := ExtractList(body, rules...)
	if err != nil {
		return nil, &Error{Category: CategoryBadData, Operation: op, Workspace: workspaceID, Message: "unexpected response body", Body: body, Underlying: err}
	}
	return items, nil
}
