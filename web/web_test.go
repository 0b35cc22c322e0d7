package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/artpar/launchpad/adapters/auth"
	"github.com/artpar/launchpad/adapters/clock"
	"github.com/artpar/launchpad/adapters/idgen"
	"github.com/artpar/launchpad/adapters/memory"
	"github.com/artpar/launchpad/app"
	"github.com/artpar/launchpad/domain/account"
	"github.com/artpar/launchpad/domain/apikey"
	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/pkg/hal"
	"github.com/rs/zerolog"
)

type testEnv struct {
	handler  *Handler
	server   *httptest.Server
	keys     *memory.KeyStore
	sessions *app.SessionService
	accounts *memory.AccountStore
	clock    *clock.Fake
	tokens   *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	keyStore := memory.NewKeyStore()
	sessionStore := memory.NewSessionStore()
	accountStore := memory.NewAccountStore()
	tokens := auth.NewTokenService("test-secret", time.Hour)

	logger := zerolog.Nop()
	sessions := app.NewSessionService(sessionStore, fake, time.Hour, logger)
	h := NewHandler(Deps{
		Accounts: app.NewAccountService(accountStore, idgen.NewSequential("acct"), fake, logger),
		Keys:     app.NewKeyService(keyStore, fake, "lk_", logger),
		Sessions: sessions,
		Tokens:   tokens,
		Logger:   logger,
		Version:  "test",
	})

	server := httptest.NewServer(h.Router())
	t.Cleanup(server.Close)
	return &testEnv{
		handler:  h,
		server:   server,
		keys:     keyStore,
		sessions: sessions,
		accounts: accountStore,
		clock:    fake,
		tokens:   tokens,
	}
}

func (e *testEnv) seedAccount(t *testing.T, id string, role account.Role) account.Account {
	t.Helper()
	a := account.Account{
		ID: id, Email: id + "@example.com", Role: role, Status: account.StatusActive,
		CreatedAt: e.clock.Now(), UpdatedAt: e.clock.Now(),
	}
	if err := e.accounts.Create(context.Background(), a); err != nil {
		t.Fatalf("seed account error = %v", err)
	}
	return a
}

func (e *testEnv) login(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	sess, err := e.sessions.Issue(context.Background(), userID, "test")
	if err != nil {
		t.Fatalf("issue session error = %v", err)
	}
	return &http.Cookie{Name: SessionCookie, Value: sess.Signature}
}

func (e *testEnv) do(t *testing.T, method, path string, body string, cookie *http.Cookie) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request error = %v", err)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	return resp
}

func decodeObject(t *testing.T, resp *http.Response) *hal.Object {
	t.Helper()
	defer resp.Body.Close()
	var obj hal.Object
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		t.Fatalf("decode body error = %v", err)
	}
	return &obj
}

func TestKeyCollectionTemplates(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", account.RoleUser)
	cookie := env.login(t, "u1")

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		err := env.keys.Create(context.Background(), apikey.Key{
			ID: fmt.Sprintf("key_%02d", i), UserID: "u1", Hash: []byte("h"),
			Prefix: "lk_aaaaaaaaa", Name: fmt.Sprintf("key %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed key error = %v", err)
		}
	}

	resp := env.do(t, http.MethodGet, "/api-keys", "", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != hal.ContentType {
		t.Errorf("Content-Type = %s, want %s", ct, hal.ContentType)
	}
	obj := decodeObject(t, resp)

	// With no adjacent pages the template set is exactly the three
	// standing affordances.
	got := obj.TemplateKeys()
	sort.Strings(got)
	want := []string{hal.TemplateBulkDelete, hal.TemplateDefault, hal.TemplateSelf}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("template keys = %v, want %v", got, want)
	}

	count, _ := obj.Property("count")
	if n, ok := count.(float64); !ok || n != 2 {
		t.Errorf("count = %v, want 2", count)
	}
	if len(obj.Embedded("keys")) != 2 {
		t.Errorf("embedded keys = %d, want 2", len(obj.Embedded("keys")))
	}
}

func TestKeyCollectionNextTemplateRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	page := paging.Page[apikey.Key]{
		Next: paging.Cursor{Cursor: "abc", Limit: 10},
	}
	obj, err := env.handler.keyCollection(page)
	if err != nil {
		t.Fatalf("keyCollection() error = %v", err)
	}

	next, ok := obj.Template(hal.TemplateNext)
	if !ok {
		t.Fatal("no next template")
	}
	if _, ok := obj.Template(hal.TemplatePrev); ok {
		t.Error("prev template present without a prev instruction")
	}
	if hal.Categorize(next) != hal.KindNavigation {
		t.Errorf("next template kind = %v, want navigation", hal.Categorize(next))
	}

	if len(next.Properties) != 1 || next.Properties[0].Name != pagingProperty {
		t.Fatalf("next properties = %+v, want one %s", next.Properties, pagingProperty)
	}
	encoded, ok := next.Properties[0].Value.(string)
	if !ok {
		t.Fatalf("hidden value type = %T, want string", next.Properties[0].Value)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(encoded), &parsed); err != nil {
		t.Fatalf("parse hidden instruction error = %v", err)
	}
	want := map[string]any{"cursor": "abc", "limit": float64(10)}
	if !reflect.DeepEqual(parsed, want) {
		t.Errorf("parsed instruction = %v, want %v", parsed, want)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api-keys", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("home status = %d, want 200", resp.StatusCode)
	}
}

func TestBearerTokenAuth(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedAccount(t, "u1", account.RoleUser)

	token, _, err := env.tokens.GenerateToken(a.ID, a.Email, a.Role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api-keys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("bearer status = %d, want 200", resp.StatusCode)
	}
}

func TestAccountsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", account.RoleUser)
	env.seedAccount(t, "a1", account.RoleAdmin)

	resp := env.do(t, http.MethodGet, "/accounts", "", env.login(t, "u1"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user status = %d, want 403", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/accounts", "", env.login(t, "a1"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", resp.StatusCode)
	}
	obj := decodeObject(t, resp)
	if len(obj.Embedded("accounts")) != 2 {
		t.Errorf("embedded accounts = %d, want 2", len(obj.Embedded("accounts")))
	}
}

func TestCreateKeyExposesSecretOnce(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", account.RoleUser)
	cookie := env.login(t, "u1")

	resp := env.do(t, http.MethodPost, "/api-keys", `{"name":"deploy"}`, cookie)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decodeObject(t, resp)
	secret, _ := created.Property("secret")
	s, ok := secret.(string)
	if !ok || !strings.HasPrefix(s, "lk_") {
		t.Fatalf("secret = %v, want lk_-prefixed string", secret)
	}

	// The listing never repeats the secret.
	resp = env.do(t, http.MethodGet, "/api-keys", "", cookie)
	listed := decodeObject(t, resp)
	for _, k := range listed.Embedded("keys") {
		if _, ok := k.Property("secret"); ok {
			t.Error("listed key exposes a secret")
		}
	}
}

func TestBulkDeleteValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", account.RoleUser)
	cookie := env.login(t, "u1")

	resp := env.do(t, http.MethodDelete, "/api-keys/bulk-delete", `{"keyIds":[]}`, cookie)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("empty selection status = %d, want 422", resp.StatusCode)
	}
}

func TestConditionalGet(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", account.RoleUser)
	cookie := env.login(t, "u1")

	resp := env.do(t, http.MethodGet, "/api-keys", "", cookie)
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("GET carries no ETag")
	}

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api-keys", nil)
	req.AddCookie(cookie)
	req.Header.Set("If-None-Match", etag)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional request error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", resp.StatusCode)
	}
}

func TestPageKeysWalk(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", account.RoleUser)
	cookie := env.login(t, "u1")

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := env.keys.Create(context.Background(), apikey.Key{
			ID: fmt.Sprintf("key_%02d", i), UserID: "u1", Hash: []byte("h"),
			Prefix: "lk_aaaaaaaaa", Name: fmt.Sprintf("key %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed key error = %v", err)
		}
	}

	// First page via an explicit instruction.
	in, _ := paging.Encode(paging.Cursor{Limit: 2})
	body, _ := json.Marshal(map[string]any{pagingProperty: in})
	resp := env.do(t, http.MethodPost, "/api-keys/page", string(body), cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("page status = %d, want 200", resp.StatusCode)
	}
	first := decodeObject(t, resp)
	if len(first.Embedded("keys")) != 2 {
		t.Fatalf("first page = %d keys, want 2", len(first.Embedded("keys")))
	}

	// Execute the next navigation template exactly as a client would.
	next, ok := first.Template(hal.TemplateNext)
	if !ok {
		t.Fatal("first page has no next template")
	}
	payload, err := hal.Build(hal.ExecutionContext{Template: next})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	body, _ = json.Marshal(payload)
	resp = env.do(t, next.Method, next.Target, string(body), cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("next page status = %d, want 200", resp.StatusCode)
	}
	second := decodeObject(t, resp)

	ids := []string{}
	for _, k := range second.Embedded("keys") {
		id, _ := k.Property("id")
		ids = append(ids, id.(string))
	}
	if !reflect.DeepEqual(ids, []string{"key_02", "key_01"}) {
		t.Errorf("second page ids = %v, want [key_02 key_01]", ids)
	}
	if _, ok := second.Template(hal.TemplatePrev); !ok {
		t.Error("second page has no prev template")
	}
}
