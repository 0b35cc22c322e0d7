package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/artpar/launchpad/pkg/hal"
)

func serveObject(t *testing.T, w http.ResponseWriter, obj *hal.Object, etag string) {
	t.Helper()
	body, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal object error = %v", err)
	}
	w.Header().Set("Content-Type", hal.ContentType)
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Write(body)
}

func TestFetchConditional(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		serveObject(t, w, hal.NewObject().Set("name", "home"), `"v1"`)
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	ctx := context.Background()

	first, err := c.Fetch(ctx, "/")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if name, _ := first.Property("name"); name != "home" {
		t.Errorf("name = %v, want home", name)
	}

	// Second fetch revalidates and serves the cached body on 304.
	second, err := c.Fetch(ctx, "/")
	if err != nil {
		t.Fatalf("Fetch() again error = %v", err)
	}
	if name, _ := second.Property("name"); name != "home" {
		t.Errorf("cached name = %v, want home", name)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("server hits = %d, want 2 (revalidation round trip)", hits)
	}
}

func TestExecuteInvalidatesCache(t *testing.T) {
	var version int32 = 1
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			v := atomic.LoadInt32(&version)
			etag := `"v1"`
			if v > 1 {
				etag = `"v2"`
			}
			if r.Header.Get("If-None-Match") == etag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			serveObject(t, w, hal.NewObject().Set("version", v), etag)
		case http.MethodPost:
			atomic.AddInt32(&version, 1)
			serveObject(t, w, hal.NewObject().Set("ok", true), "")
		}
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	ctx := context.Background()

	if _, err := c.Fetch(ctx, "/things"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	_, err := c.Execute(ctx, hal.ExecutionContext{
		Template: hal.Template{Method: http.MethodPost, Target: "/things"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// The mutation dropped the cache; the refetch sees the new state.
	obj, err := c.Fetch(ctx, "/things")
	if err != nil {
		t.Fatalf("refetch error = %v", err)
	}
	if v, _ := obj.Property("version"); v != float64(2) {
		t.Errorf("version after mutation = %v, want 2", v)
	}
}

func TestExecuteBuildsPayload(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		serveObject(t, w, hal.NewObject(), "")
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	_, err := c.Execute(context.Background(), hal.ExecutionContext{
		Template: hal.Template{
			Method: http.MethodPost,
			Target: "/api-keys/page",
			Properties: []hal.Property{
				{Name: "pagingInstruction", Type: hal.TypeHidden, Value: `{"cursor":"abc","limit":10}`},
			},
		},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if received["pagingInstruction"] != `{"cursor":"abc","limit":10}` {
		t.Errorf("payload = %v, want hidden instruction copied verbatim", received)
	}
}

func TestExecuteValidation(t *testing.T) {
	c := New(Config{BaseURL: "http://unused.invalid"})
	_, err := c.Execute(context.Background(), hal.ExecutionContext{
		Template: hal.Template{
			Method: http.MethodPost,
			Target: "/api-keys",
			Properties: []hal.Property{
				{Name: "name", Type: hal.TypeText, Required: true},
			},
		},
	})

	var validation *hal.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("error = %v, want *hal.ValidationError", err)
	}
	if validation.Kind != hal.MissingRequiredField || validation.Field != "name" {
		t.Errorf("validation = %+v", validation)
	}
}

func TestExecuteSerializesSameTemplate(t *testing.T) {
	var active, maxActive int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		serveObject(t, w, hal.NewObject(), "")
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	template := hal.Template{Method: http.MethodPost, Target: "/jobs"}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Execute(context.Background(), hal.ExecutionContext{Template: template}); err != nil {
				t.Errorf("Execute() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&maxActive) != 1 {
		t.Errorf("max concurrent executions = %d, want 1", maxActive)
	}
}

func TestServerErrorDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"forbidden: requires role admin or above","status":403}`))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL})
	_, err := c.Fetch(context.Background(), "/accounts")

	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("error = %v, want *ServerError", err)
	}
	if serverErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", serverErr.StatusCode)
	}
	if serverErr.Message != "forbidden: requires role admin or above" {
		t.Errorf("Message = %q", serverErr.Message)
	}
}
