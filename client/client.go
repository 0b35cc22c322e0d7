// Package client provides a generic hypermedia client. It navigates by
// fetching HAL objects and acting through their templates; it never builds
// URLs of its own beyond the entry point.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/artpar/launchpad/pkg/hal"
)

// ServerError represents an error response from the API.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

type cachedResource struct {
	etag string
	body []byte
}

// Client fetches HAL resources and executes their templates.
//
// GETs are conditional: the client remembers each resource's entity tag and
// revalidates with If-None-Match, serving the cached body on 304. Any
// non-GET template execution drops the whole cache, so the next fetch of
// every resource goes back to the server.
//
// Repeated submissions of the same template are serialized: a second
// Execute of a template waits for the first to resolve.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string

	mu    sync.Mutex
	cache map[string]cachedResource

	inflightMu sync.Mutex
	inflight   map[string]*sync.Mutex
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// New creates a hypermedia client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		headers:    cfg.Headers,
		cache:      make(map[string]cachedResource),
		inflight:   make(map[string]*sync.Mutex),
	}
}

// Fetch retrieves a resource by its root-relative path, revalidating any
// cached copy.
func (c *Client) Fetch(ctx context.Context, path string) (*hal.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", hal.ContentType)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.mu.Lock()
	cached, hasCached := c.cache[path]
	c.mu.Unlock()
	if hasCached {
		req.Header.Set("If-None-Match", cached.etag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && hasCached {
		return decodeObject(cached.body)
	}
	if resp.StatusCode >= 400 {
		return nil, readServerError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if etag := resp.Header.Get("ETag"); etag != "" {
		c.mu.Lock()
		c.cache[path] = cachedResource{etag: etag, body: body}
		c.mu.Unlock()
	}
	return decodeObject(body)
}

// Execute builds a template's payload from the execution context and
// submits it in a single round trip. Mutating executions invalidate the
// resource cache.
func (c *Client) Execute(ctx context.Context, ec hal.ExecutionContext) (*hal.Object, error) {
	t := ec.Template
	method := t.Method
	if method == "" {
		method = http.MethodGet
	}

	guard := c.templateGuard(method + " " + t.Target)
	guard.Lock()
	defer guard.Unlock()

	payload, err := hal.Build(ec)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if method != http.MethodGet && len(payload) > 0 {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+t.Target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", hal.ContentType)
	if bodyReader != nil {
		contentType := t.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	defer resp.Body.Close()

	if method != http.MethodGet {
		// Anything may have changed server-side; refetch everything.
		c.mu.Lock()
		c.cache = make(map[string]cachedResource)
		c.mu.Unlock()
	}

	if resp.StatusCode >= 400 {
		return nil, readServerError(resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		return hal.NewObject(), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodeObject(body)
}

// templateGuard returns the mutex serializing executions of one template.
func (c *Client) templateGuard(key string) *sync.Mutex {
	c.inflightMu.Lock()
	defer c.inflightMu.Unlock()
	guard, ok := c.inflight[key]
	if !ok {
		guard = &sync.Mutex{}
		c.inflight[key] = guard
	}
	return guard
}

func decodeObject(body []byte) (*hal.Object, error) {
	var obj hal.Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decode resource: %w", err)
	}
	return &obj, nil
}

func readServerError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	message := ""
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		message = parsed.Error
	} else {
		message = string(body)
	}
	return &ServerError{StatusCode: resp.StatusCode, Message: message}
}
