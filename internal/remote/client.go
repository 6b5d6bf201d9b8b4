// Package remote is the HTTP client for the authoritative activity store.
// The client only depends on the store's request/response contract: a
// role-scoped listing endpoint and a single-row creation endpoint, both
// wrapped in an {ok, items/item, error} envelope.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fieldops/internal/types"
)

// Wire role values. The dashboard's FIELD_PROMOTER maps to "gestor" on the
// wire; ADMIN maps to "admin".
const (
	WireRoleAdmin  = "admin"
	WireRoleGestor = "gestor"
)

// WireRole translates a dashboard role to its query-parameter value.
func WireRole(role types.Role) string {
	if role == types.RoleAdmin {
		return WireRoleAdmin
	}
	return WireRoleGestor
}

// NewActivity is the creation payload the remote store accepts.
type NewActivity struct {
	CreatedBy  string `json:"created_by"`
	Role       string `json:"role"`
	AssignedTo string `json:"assigned_to"`
	Objective  string `json:"objective"`
	Community  string `json:"community"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
}

// ActivityRow is an activity as the remote store returns it.
type ActivityRow struct {
	ID         string `json:"id"`
	CreatedBy  string `json:"created_by"`
	AssignedTo string `json:"assigned_to"`
	Objective  string `json:"objective"`
	Community  string `json:"community"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	Place      string `json:"place"`
}

// Activity converts a wire row to the domain shape. The remote id is
// authoritative and replaces any locally minted one.
func (r ActivityRow) Activity() types.Activity {
	return types.Activity{
		ID:         r.ID,
		PromoterID: r.CreatedBy,
		AssignedTo: r.AssignedTo,
		Objective:  r.Objective,
		Community:  r.Community,
		Date:       r.Date,
		Time:       r.Time,
		Status:     types.Status(r.Status),
		Place:      r.Place,
	}
}

// APIError is any non-success answer from the remote store: a non-2xx status,
// a missing ok flag, or a malformed body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("remote: request failed (status %d)", e.Status)
}

// envelope is the remote store's uniform response wrapper.
type envelope struct {
	OK    bool          `json:"ok"`
	Items []ActivityRow `json:"items"`
	Item  *ActivityRow  `json:"item"`
	Error string        `json:"error"`
}

// Client talks to one remote activity store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the store at baseURL. A zero timeout gets a
// 30s default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// List fetches the activities visible to (role, userID). Gestor queries
// require a user id; that is checked here rather than letting the server
// answer 400.
func (c *Client) List(ctx context.Context, role types.Role, userID string) ([]types.Activity, error) {
	wireRole := WireRole(role)
	if wireRole == WireRoleGestor && userID == "" {
		return nil, fmt.Errorf("remote: gestor listing requires a user id")
	}

	q := url.Values{}
	q.Set("role", wireRole)
	if userID != "" {
		q.Set("user", userID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/activities?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build list request: %w", err)
	}

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}

	activities := make([]types.Activity, 0, len(env.Items))
	for _, row := range env.Items {
		activities = append(activities, row.Activity())
	}
	return activities, nil
}

// Create inserts one activity and returns the canonical row.
func (c *Client) Create(ctx context.Context, payload NewActivity) (types.Activity, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return types.Activity{}, fmt.Errorf("remote: encode create payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/activities", bytes.NewReader(body))
	if err != nil {
		return types.Activity{}, fmt.Errorf("remote: build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	env, err := c.do(req)
	if err != nil {
		return types.Activity{}, err
	}
	if env.Item == nil {
		return types.Activity{}, &APIError{Status: http.StatusCreated, Message: "response missing item"}
	}
	return env.Item.Activity(), nil
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "malformed response body"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.OK {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	return &env, nil
}
