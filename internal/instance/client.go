// pattern: Imperative Shell
package instance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client is a thin HTTP client for communicating with a running deskmux instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// State fetches the full workspace document as raw JSON.
func (c *Client) State() ([]byte, error) {
	return c.get("/api/state")
}

// Tabs fetches the tab list (id, name, pane counts, active arrangement).
func (c *Client) Tabs() ([]byte, error) {
	return c.get("/api/tabs")
}

// Repos fetches the repo/worktree catalog.
func (c *Client) Repos() ([]byte, error) {
	return c.get("/api/repos")
}

// OpenTab opens a new tab with a single terminal pane.
func (c *Client) OpenTab(name string) ([]byte, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	return c.postJSON("/api/tabs", body)
}

// CloseTab closes a tab; the close is undoable in the running instance.
func (c *Client) CloseTab(id string) ([]byte, error) {
	return c.delete("/api/tabs/" + id)
}

// ClosePane closes a pane; the close is undoable in the running instance.
func (c *Client) ClosePane(id string) ([]byte, error) {
	return c.delete("/api/panes/" + id)
}

// Undo reopens the most recently closed pane or tab.
func (c *Client) Undo() ([]byte, error) {
	return c.post("/api/undo")
}

// Flush forces an immediate workspace save, bypassing the debounce.
func (c *Client) Flush() ([]byte, error) {
	return c.post("/api/flush")
}

// PaneOutput captures recent output from a pane's terminal surface.
// If lines > 0, captures only the last N lines.
func (c *Client) PaneOutput(paneID string, lines int) ([]byte, error) {
	path := "/api/panes/" + paneID + "/output"
	if lines > 0 {
		path += "?lines=" + strconv.Itoa(lines)
	}
	return c.get(path)
}

// get performs a GET request and returns the response body.
func (c *Client) get(path string) ([]byte, error) {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to deskmux: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := extractErrorMessage(body)
		return nil, fmt.Errorf("deskmux returned status %d: %s", resp.StatusCode, msg)
	}

	return body, nil
}

// post performs a POST request with no body and returns the response body.
func (c *Client) post(path string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// postJSON performs a POST request with a JSON body and returns the response body.
func (c *Client) postJSON(path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// delete performs a DELETE request and returns the response body.
func (c *Client) delete(path string) ([]byte, error) {
	req, err := http.NewRequest("DELETE", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to deskmux: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := extractErrorMessage(body)
		return nil, fmt.Errorf("deskmux returned status %d: %s", resp.StatusCode, msg)
	}

	return body, nil
}

// extractErrorMessage attempts to extract the error message from a JSON response body.
// If the body is not valid JSON or doesn't have an "error" field, returns the raw body string.
func extractErrorMessage(body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(body)
}
