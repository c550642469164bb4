// Package client provides a REST implementation of the Roster assignment
// service, speaking the envelope wire format of the api package.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/roster/assignment"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface check.
var _ assignment.Service = (*Client)(nil)

// Client is a REST assignment service client.
type Client struct {
	baseURL string
	http    Doer
	logger  *slog.Logger
}

// Option is a functional option for the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(d Doer) Option { return func(c *Client) { c.http = d } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// New creates a client for a Roster API server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope mirrors api.Response with the payload kept raw for typed decoding.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Error   *assignment.Error `json:"error,omitempty"`
}

// assignmentData and assignmentListData mirror the server's data payloads.
type assignmentData struct {
	Assignment *assignment.Assignment `json:"assignment"`
}

type assignmentListData struct {
	Assignments []*assignment.Assignment `json:"assignments"`
}

func (c *Client) Assign(ctx context.Context, req *assignment.AssignRequest) (*assignment.Assignment, error) {
	var out assignmentData
	if err := c.do(ctx, http.MethodPost, "/v1/assignments", req, &out); err != nil {
		return nil, err
	}
	return out.Assignment, nil
}

func (c *Client) BulkAssign(ctx context.Context, req *assignment.BulkAssignRequest) ([]*assignment.Assignment, error) {
	var out assignmentListData
	if err := c.do(ctx, http.MethodPost, "/v1/assignments/bulk", req, &out); err != nil {
		return nil, err
	}
	return out.Assignments, nil
}

func (c *Client) Remove(ctx context.Context, req *assignment.RemoveRequest) error {
	path := "/v1/assignments/" + targetSegment(req.ID.IsNil(), req.ID.String())
	body := tripleBody{UserID: req.UserID, RoleID: req.RoleID, StoreID: req.StoreID}
	return c.do(ctx, http.MethodDelete, path, body, nil)
}

func (c *Client) ToggleStatus(ctx context.Context, req *assignment.ToggleRequest) error {
	path := "/v1/assignments/" + targetSegment(req.ID.IsNil(), req.ID.String()) + "/status"
	body := tripleBody{UserID: req.UserID, RoleID: req.RoleID, StoreID: req.StoreID}
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) ListByStore(ctx context.Context, storeID string, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	path := "/v1/stores/" + url.PathEscape(storeID) + "/assignments" + listQuery(params)
	var out assignmentListData
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Assignments, nil
}

func (c *Client) ListByUser(ctx context.Context, userID int64, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	path := "/v1/users/" + strconv.FormatInt(userID, 10) + "/assignments" + listQuery(params)
	var out assignmentListData
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Assignments, nil
}

// tripleBody is the request body for triple-targeted remove/toggle.
type tripleBody struct {
	UserID  int64  `json:"user_id,omitempty"`
	RoleID  int64  `json:"role_id,omitempty"`
	StoreID string `json:"store_id,omitempty"`
}

// targetSegment returns the path segment addressing an assignment: its ID,
// or "-" when the server should resolve the (user, role, store) triple.
func targetSegment(nilID bool, idStr string) string {
	if nilID {
		return "-"
	}
	return idStr
}

func listQuery(params *assignment.ListParams) string {
	if params == nil {
		return ""
	}
	q := url.Values{}
	if params.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*params.IsActive))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// do executes one request and decodes the envelope. A success envelope has
// its data decoded into out (when non-nil); a failure envelope returns the
// server's error as-is so callers see the original message and timestamp.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("roster: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("roster: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("roster: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do with a close error

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("roster: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Debug("roster: non-envelope response",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("roster: %s %s: unexpected response (status %d)", method, path, resp.StatusCode)
	}

	if !env.Success {
		if env.Error != nil {
			return env.Error
		}
		return fmt.Errorf("roster: %s %s: request failed (status %d)", method, path, resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("roster: decode response: %w", err)
		}
	}
	return nil
}
