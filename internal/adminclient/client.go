// Package adminclient is a thin HTTP client for corectld's admin/debug
// surface (internal/adminhttp), used by corectl to list and delete handle
// table entries and inspect FSM control state.
package adminclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one corectld instance's admin HTTP server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client against baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError represents a non-2xx response from the admin surface.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("admin request failed (%d): %s", e.StatusCode, e.Message)
}

// envelope mirrors adminhttp.Response without importing internal/adminhttp,
// which lives behind the daemon's own module boundary in spirit even though
// both packages are compiled into the same module here.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (c *Client) do(method, path string, result any) error {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = string(body)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}

// HandleSnapshot mirrors handle.Snapshot for JSON decoding without importing
// pkg/handle into the client.
type HandleSnapshot struct {
	Hdl            int32  `json:"Hdl"`
	PinCount       uint32 `json:"PinCount"`
	RefCount       uint32 `json:"RefCount"`
	Flags          string `json:"Flags"`
	Closing        bool   `json:"Closing"`
	DeleteDeferred bool   `json:"DeleteDeferred"`
	Pending        bool   `json:"Pending"`
	Implicit       bool   `json:"Implicit"`
	AllowChildren  bool   `json:"AllowChildren"`
	NoUserAccess   bool   `json:"NoUserAccess"`
}

// ListHandles fetches the entity handle table snapshot.
func (c *Client) ListHandles() ([]HandleSnapshot, error) {
	var out []HandleSnapshot
	if err := c.do(http.MethodGet, "/debug/handles", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteHandle runs the pin-for-delete sequence against hdl on the remote
// daemon.
func (c *Client) DeleteHandle(hdl int32) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/debug/handles/%d", hdl), nil)
}

// FSMSnapshot mirrors fsmctl.FSMSnapshot for JSON decoding.
type FSMSnapshot struct {
	ID              string `json:"ID"`
	StateName       string `json:"StateName"`
	Busy            bool   `json:"Busy"`
	Deleting        bool   `json:"Deleting"`
	StateTimerArmed bool   `json:"StateTimerArmed"`
	OverallArmed    bool   `json:"OverallArmed"`
}

// fsmDebugResponse mirrors the map the DebugFSM handler returns.
type fsmDebugResponse struct {
	FSMs       []FSMSnapshot `json:"fsms"`
	QueueDepth int           `json:"queue_depth"`
	TimerCount int           `json:"timer_count"`
}

// ListFSMs fetches the FSM control snapshot.
func (c *Client) ListFSMs() ([]FSMSnapshot, int, int, error) {
	var out fsmDebugResponse
	if err := c.do(http.MethodGet, "/debug/fsm", &out); err != nil {
		return nil, 0, 0, err
	}
	return out.FSMs, out.QueueDepth, out.TimerCount, nil
}
