package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const apiPrefix = "/api/v1"

// Client talks to the matchmaking server's REST surface. Each method maps
// to one endpoint; the websocket stream is handled separately by watch.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken updates the client's token
func (c *Client) SetToken(token string) {
	c.token = token
}

// CreateGuest creates a guest patient player; name may be empty
func (c *Client) CreateGuest(name string) (AuthResult, error) {
	var result AuthResult
	err := c.post("/players/guest", map[string]string{"display_name": name}, &result)
	return result, err
}

// RegisterStaff registers a staff account and logs it in
func (c *Client) RegisterStaff(name, username, password string) (AuthResult, error) {
	var result AuthResult
	err := c.post("/staff/register", map[string]string{
		"display_name": name,
		"username":     username,
		"password":     password,
	}, &result)
	return result, err
}

// LoginStaff logs a staff account in
func (c *Client) LoginStaff(username, password string) (AuthResult, error) {
	var result AuthResult
	err := c.post("/staff/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	return result, err
}

// Me returns the authenticated player
func (c *Client) Me() (Player, error) {
	var result Player
	err := c.get("/players/me", &result)
	return result, err
}

// QueueStatus returns the matchmaking queue status
func (c *Client) QueueStatus() (QueueStatus, error) {
	var result QueueStatus
	err := c.get("/queue", &result)
	return result, err
}

// Health checks the server health endpoint
func (c *Client) Health() (HealthResult, error) {
	var result HealthResult
	err := c.get("/health", &result)
	return result, err
}

// APIError represents an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body, result any) error {
	return c.do(http.MethodPost, path, body, result)
}

func (c *Client) do(method, path string, body, result any) error {
	url := c.baseURL + apiPrefix + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
