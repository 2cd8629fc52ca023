package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Client wraps HTTP calls to the billsplit API.
type Client struct {
	BaseURL string
	Token   string
	// RefreshToken, when set, is traded for a new pair once a request comes
	// back 401. OnRefresh receives that pair.
	RefreshToken string
	OnRefresh    func(TokenPair)
	HTTPClient   *http.Client
}

// NewClient creates a Client from a server URL (e.g. http://localhost:8080) and bearer token.
func NewClient(serverURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(serverURL, "/") + "/api/v1",
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response is the server envelope.
type Response[T any] struct {
	Status     bool                `json:"status"`
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Data       T                   `json:"data"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

// APIError is returned when the server sends a non-2xx status.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "api: %d: %s", e.Status, e.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, strings.Join(e.Fields[k], "; "))
	}
	return b.String()
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp Response[json.RawMessage]
		if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: errResp.Message, Fields: errResp.Errors}
		}
		return &APIError{Status: resp.StatusCode, Message: string(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) send(method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = data
	}

	err := c.do(method, path, payload, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || !c.canRefresh(path) {
		return err
	}
	if refreshErr := c.refresh(); refreshErr != nil {
		return err
	}
	return c.do(method, path, payload, out)
}

func (c *Client) do(method, path string, payload []byte, out interface{}) error {
	var r io.Reader
	if payload != nil {
		r = bytes.NewReader(payload)
	}
	req, err := c.newRequest(method, path, r)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doJSON(req, out)
}

// Auth routes answer 401 for bad credentials, so they are never retried.
func (c *Client) canRefresh(path string) bool {
	return c.RefreshToken != "" && !strings.HasPrefix(path, "/auth/")
}

func (c *Client) refresh() error {
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/auth/refresh", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.RefreshToken)
	req.Header.Set("Accept", "application/json")

	var resp Response[struct {
		Tokens TokenPair `json:"tokens"`
	}]
	if err := c.doJSON(req, &resp); err != nil {
		return fmt.Errorf("refreshing token: %w", err)
	}
	pair := resp.Data.Tokens
	if pair.AccessToken == "" {
		return fmt.Errorf("refreshing token: no access token in response")
	}

	c.Token = pair.AccessToken
	c.RefreshToken = pair.RefreshToken
	if c.OnRefresh != nil {
		c.OnRefresh(pair)
	}
	return nil
}

func (c *Client) Get(path string, out interface{}) error {
	return c.send(http.MethodGet, path, nil, out)
}

// Post sends a POST with a JSON body. A nil body sends no payload.
func (c *Client) Post(path string, body, out interface{}) error {
	return c.send(http.MethodPost, path, body, out)
}

func (c *Client) Put(path string, body, out interface{}) error {
	return c.send(http.MethodPut, path, body, out)
}

func (c *Client) Delete(path string, out interface{}) error {
	return c.send(http.MethodDelete, path, nil, out)
}
