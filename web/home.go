package web

import (
	"net/http"
	"strings"

	"github.com/artpar/launchpad/pkg/hal"
	"github.com/artpar/launchpad/pkg/routing"
)

// Home renders the API entry point: links to every collection.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	obj := hal.NewObject().
		Set("name", "launchpad").
		Set("version", h.version).
		AddLink("self", hal.Link{Href: h.routes.MustHref(ctrlHome, opGet, nil)}).
		AddLink("sitemap", hal.Link{Href: h.routes.MustHref(ctrlHome, opSitemap, nil)}).
		AddLink("api-keys", hal.Link{Href: h.routes.MustHref(ctrlAPIKeys, opList, nil), Title: "API Keys"}).
		AddLink("sessions", hal.Link{Href: h.routes.MustHref(ctrlSessions, opList, nil), Title: "Sessions"}).
		AddLink("accounts", hal.Link{Href: h.routes.MustHref(ctrlAccounts, opList, nil), Title: "Accounts"})

	h.writeHAL(w, r, http.StatusOK, obj)
}

// Sitemap renders the full route table as links, one relation per
// controller.operation. Parameterized patterns are listed as-is.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	obj := hal.NewObject().
		AddLink("self", hal.Link{Href: h.routes.MustHref(ctrlHome, opSitemap, nil)}).
		AddLink("home", hal.Link{Href: h.routes.MustHref(ctrlHome, opGet, nil)})

	count := 0
	h.routes.Walk(func(controller, operation string, route routing.Route) {
		rel := controller + "." + operation
		if strings.Contains(route.Pattern, "{") {
			obj.AddLink(rel, hal.Link{Href: route.Pattern, Name: route.Method, Type: "template"})
		} else {
			obj.AddLink(rel, hal.Link{Href: route.Pattern, Name: route.Method})
		}
		count++
	})
	obj.Set("count", count)

	h.writeHAL(w, r, http.StatusOK, obj)
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
