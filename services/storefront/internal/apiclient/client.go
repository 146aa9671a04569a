package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// Config wires the client. Nil hook slices select the default chains.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	HTTPClient    *http.Client
	Tokens        TokenSource
	SuccessCodes  []int
	RequestHooks  []RequestHook
	ResponseHooks []ResponseHook
	// Now stamps behavior events. Defaults to time.Now.
	Now func() time.Time
}

// Client calls the storefront API over HTTP.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	requestHooks  []RequestHook
	responseHooks []ResponseHook
	now           func() time.Time
}

// NewClient constructs a storefront API client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	requestHooks := cfg.RequestHooks
	if requestHooks == nil {
		requestHooks = DefaultRequestHooks(cfg.Tokens)
	}
	responseHooks := cfg.ResponseHooks
	if responseHooks == nil {
		responseHooks = DefaultResponseHooks(cfg.SuccessCodes...)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    httpClient,
		requestHooks:  requestHooks,
		responseHooks: responseHooks,
		now:           now,
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	req, err := c.newRequest(ctx, method, path, query, payload)
	if err != nil {
		return err
	}
	for _, hook := range c.requestHooks {
		if err := hook(req); err != nil {
			return err
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newTransportError(0, "", "", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError(resp.StatusCode, "", "", err)
	}

	r := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
		Payload:    body,
	}
	for _, hook := range c.responseHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	if !r.OK() {
		return newTransportError(r.StatusCode, serverMessage(r.Body), r.Status, nil)
	}
	if err := decodePayload(r.Payload, out); err != nil {
		return newTransportError(r.StatusCode, "", "", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload any) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func decodePayload(payload []byte, out any) error {
	if out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
