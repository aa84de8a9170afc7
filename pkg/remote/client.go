// Package remote delegates filter operations to a processing server.
//
// The server exposes
//
//	POST {base}/api/processing/process     {filename, operation, parameters}
//	GET  {base}/api/processing/processed/{output_file}
//	GET  {base}/api/processing/operations
//
// Failures are reported verbatim and never retried.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "image/jpeg"
	_ "image/png"
)

// TokenHeader carries the per-image request token.
const TokenHeader = "X-Request-Token"

// ErrStaleResponse is returned by Accept for a response that was overtaken
// by a newer one for the same image.
var ErrStaleResponse = errors.New("stale response")

// ProcessingError is a failed delegation. Message is the server's text,
// unchanged.
type ProcessingError struct {
	Status  int
	Message string
}

func (e *ProcessingError) Error() string {
	return e.Message
}

// Ticket identifies one request for one image.
type Ticket struct {
	Image string
	Token uint64
}

// Result is a successful delegation.
type Result struct {
	Ticket     Ticket
	OutputFile string
	URL        string
}

// Client talks to one processing server. It is safe for concurrent use.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu       sync.Mutex
	issued   map[string]uint64
	accepted map[string]uint64
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     http.DefaultClient,
		issued:   map[string]uint64{},
		accepted: map[string]uint64{},
	}
}

// Begin issues the next token for img.
func (c *Client) Begin(img string) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued[img]++
	return Ticket{Image: img, Token: c.issued[img]}
}

// Accept records t as applied. It returns ErrStaleResponse when a newer
// ticket for the same image was accepted first; the caller must then
// discard the response.
func (c *Client) Accept(t Ticket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Token <= c.accepted[t.Image] {
		return fmt.Errorf("%w: %s token %d, already at %d", ErrStaleResponse, t.Image, t.Token, c.accepted[t.Image])
	}
	c.accepted[t.Image] = t.Token
	return nil
}

type processRequest struct {
	Filename   string         `json:"filename"`
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters"`
}

type processResponse struct {
	OutputFile string `json:"output_file"`
	Error      string `json:"error"`
}

// Process asks the server to run operation on filename.
func (c *Client) Process(ctx context.Context, filename, operation string, params map[string]any) (Result, error) {
	if params == nil {
		params = map[string]any{}
	}
	t := c.Begin(filename)
	body, err := json.Marshal(processRequest{Filename: filename, Operation: operation, Parameters: params})
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/processing/process", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TokenHeader, strconv.FormatUint(t.Token, 10))

	var out processResponse
	if err := c.do(req, &out); err != nil {
		return Result{Ticket: t}, err
	}
	if out.Error != "" {
		return Result{Ticket: t}, &ProcessingError{Status: http.StatusOK, Message: out.Error}
	}
	if out.OutputFile == "" {
		return Result{Ticket: t}, &ProcessingError{Status: http.StatusOK, Message: "response has no output_file"}
	}
	return Result{Ticket: t, OutputFile: out.OutputFile, URL: c.ProcessedURL(out.OutputFile)}, nil
}

// ProcessedURL is where the server serves an output file.
func (c *Client) ProcessedURL(outputFile string) string {
	return c.BaseURL + "/api/processing/processed/" + url.PathEscape(outputFile)
}

// Fetch downloads and decodes a processed output file.
func (c *Client) Fetch(ctx context.Context, outputFile string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ProcessedURL(outputFile), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", outputFile, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, errorFromBody(resp)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", outputFile, err)
	}
	return img, nil
}

// Operations lists the operation names the server supports.
func (c *Client) Operations(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/processing/operations", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Operations json.RawMessage `json:"operations"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	// the server answers either a list of names or a map keyed by name
	var names []string
	if err := json.Unmarshal(out.Operations, &names); err == nil {
		return names, nil
	}
	var byName map[string]json.RawMessage
	if err := json.Unmarshal(out.Operations, &byName); err != nil {
		return nil, fmt.Errorf("decode operations: %w", err)
	}
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errorFromBody(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorFromBody(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var payload struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(resp.StatusCode)
	if json.Unmarshal(b, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &ProcessingError{Status: resp.StatusCode, Message: msg}
}
