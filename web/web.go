// Package web provides the hypermedia HTTP API. Every resource is an
// application/hal+json object whose links and templates are built from the
// reverse-routing table, so a handler and the affordances pointing at it can
// never disagree about a path.
package web

import (
	"net/http"

	"github.com/artpar/launchpad/adapters/metrics"
	"github.com/artpar/launchpad/app"
	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/pkg/routing"
	"github.com/artpar/launchpad/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Controllers and operations of the route table. Adapters reference routes
// by these names, never by path strings.
const (
	ctrlHome     = "home"
	ctrlAPIKeys  = "api-keys"
	ctrlSessions = "sessions"
	ctrlAccounts = "accounts"

	opList       = "list"
	opGet        = "get"
	opCreate     = "create"
	opUpdate     = "update"
	opDelete     = "delete"
	opBulkDelete = "bulk-delete"
	opPage       = "page"
	opSitemap    = "sitemap"
)

// SessionCookie is the cookie carrying the session signature.
const SessionCookie = "launchpad_session"

// Handler provides the HTTP API endpoints.
type Handler struct {
	accounts     *app.AccountService
	keys         *app.KeyService
	sessions     *app.SessionService
	tokens       ports.TokenVerifier
	routes       *routing.Table
	metrics      *metrics.Collector
	decodePaging func(string) (paging.Instruction, error)
	logger       zerolog.Logger
	version      string
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Accounts *app.AccountService
	Keys     *app.KeyService
	Sessions *app.SessionService
	Tokens   ports.TokenVerifier
	Metrics  *metrics.Collector

	// DecodePaging parses the wire form of the active backend's paging
	// instruction. Defaults to the cursor variant.
	DecodePaging func(string) (paging.Instruction, error)

	Logger  zerolog.Logger
	Version string
}

// NewHandler creates the API handler and populates its route table.
func NewHandler(deps Deps) *Handler {
	decode := deps.DecodePaging
	if decode == nil {
		decode = func(s string) (paging.Instruction, error) {
			c, err := paging.DecodeCursor(s)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}

	h := &Handler{
		accounts:     deps.Accounts,
		keys:         deps.Keys,
		sessions:     deps.Sessions,
		tokens:       deps.Tokens,
		routes:       routing.NewTable(),
		metrics:      deps.Metrics,
		decodePaging: decode,
		logger:       deps.Logger,
		version:      deps.Version,
	}
	for _, d := range h.routeDefs() {
		h.routes.Register(d.controller, d.operation, d.method, d.pattern)
	}
	return h
}

// Routes exposes the reverse-routing table.
func (h *Handler) Routes() *routing.Table {
	return h.routes
}

type routeDef struct {
	controller string
	operation  string
	method     string
	pattern    string
	protected  bool
	handler    http.HandlerFunc
}

func (h *Handler) routeDefs() []routeDef {
	return []routeDef{
		{ctrlHome, opGet, http.MethodGet, "/", false, h.Home},
		{ctrlHome, opSitemap, http.MethodGet, "/sitemap", false, h.Sitemap},

		{ctrlAPIKeys, opList, http.MethodGet, "/api-keys", true, h.ListKeys},
		{ctrlAPIKeys, opCreate, http.MethodPost, "/api-keys", true, h.CreateKey},
		{ctrlAPIKeys, opBulkDelete, http.MethodDelete, "/api-keys/bulk-delete", true, h.BulkDeleteKeys},
		{ctrlAPIKeys, opPage, http.MethodPost, "/api-keys/page", true, h.PageKeys},

		{ctrlSessions, opList, http.MethodGet, "/sessions", true, h.ListSessions},
		{ctrlSessions, opCreate, http.MethodPost, "/sessions", true, h.CreateSession},
		{ctrlSessions, opBulkDelete, http.MethodDelete, "/sessions/bulk-delete", true, h.BulkDeleteSessions},
		{ctrlSessions, opPage, http.MethodPost, "/sessions/page", true, h.PageSessions},

		{ctrlAccounts, opList, http.MethodGet, "/accounts", true, h.ListAccounts},
		{ctrlAccounts, opCreate, http.MethodPost, "/accounts", true, h.CreateAccount},
		{ctrlAccounts, opGet, http.MethodGet, "/accounts/{id}", true, h.GetAccount},
		{ctrlAccounts, opUpdate, http.MethodPut, "/accounts/{id}", true, h.UpdateAccount},
		{ctrlAccounts, opDelete, http.MethodDelete, "/accounts/{id}", true, h.DeleteAccount},
	}
}

// Router builds the chi router with the full middleware chain.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requestLogger)
	if h.metrics != nil {
		r.Use(h.measure)
	}

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, d := range h.routeDefs() {
		if d.protected {
			r.With(h.authenticate, h.requireAuth).Method(d.method, d.pattern, d.handler)
		} else {
			r.Method(d.method, d.pattern, d.handler)
		}
	}
	return r
}
