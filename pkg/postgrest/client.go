// Package postgrest is a small client for the REST/RPC interface the hosted data service
// exposes: table reads under /{table} and stored procedures under /rpc/{name}.
package postgrest

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

// Config describes how to reach the data service.
type Config struct {
	URL     string
	APIKey  string
	Signer  *TokenSigner
	Timeout time.Duration
}

// Error is a failure reported by the data service. Message carries the database text,
// including constraint names.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

// Client performs requests against the data service.
type Client struct {
	baseURL string
	apiKey  string
	signer  *TokenSigner
	http    *http.Client
}

// NewClient constructs a client. A zero timeout leaves requests bounded only by their context.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		signer:  cfg.Signer,
		http:    httpClient,
	}
}

// RPC calls a stored procedure with named arguments and decodes the result into out.
// A nil out discards the body.
func (c *Client) RPC(ctx context.Context, fn string, args interface{}, out interface{}) error {
	if args == nil {
		args = struct{}{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode %s arguments: %w", fn, err)
	}
	return c.do(ctx, http.MethodPost, "/rpc/"+fn, nil, bytes.NewReader(body), out)
}

// Select reads rows of a table or view. columns and order use the data service syntax,
// for example Select(ctx, "deportes", "nombre", "nombre.asc", &rows).
func (c *Client) Select(ctx context.Context, table, columns, order string, out interface{}) error {
	query := url.Values{}
	if columns != "" {
		query.Set("select", columns)
	}
	if order != "" {
		query.Set("order", order)
	}
	return c.do(ctx, http.MethodGet, "/"+table, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req); err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, payload)
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], payload...)
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) error {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if c.signer != nil {
		token, err := c.signer.Token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return nil
}

func decodeError(status int, payload []byte) error {
	apiErr := &Error{Status: status}
	if err := json.Unmarshal(payload, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(payload))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
