package web

import (
	"net/http"
	"time"

	"github.com/artpar/launchpad/domain/apikey"
	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/pkg/hal"
)

// keyResource renders one API key. The hash never leaves the server; the
// raw secret appears only in the creation response.
func keyResource(k apikey.Key) *hal.Object {
	obj := hal.NewObject().
		Set("id", k.ID).
		Set("name", k.Name).
		Set("prefix", k.Prefix).
		Set("createdAt", k.CreatedAt.Format(time.RFC3339))
	if k.ExpiresAt != nil {
		obj.Set("expiresAt", k.ExpiresAt.Format(time.RFC3339))
	}
	if k.RevokedAt != nil {
		obj.Set("revokedAt", k.RevokedAt.Format(time.RFC3339))
	}
	if k.LastUsed != nil {
		obj.Set("lastUsed", k.LastUsed.Format(time.RFC3339))
	}
	return obj
}

// keyCollection renders the API key collection: embedded keys, navigation
// links, the create form, the bulk-delete action, and paging templates.
func (h *Handler) keyCollection(page paging.Page[apikey.Key]) (*hal.Object, error) {
	self := h.routes.MustHref(ctrlAPIKeys, opList, nil)

	embedded := make([]*hal.Object, 0, len(page.Items))
	for _, k := range page.Items {
		embedded = append(embedded, keyResource(k))
	}

	obj := hal.NewObject().
		Set("count", len(page.Items)).
		AddLink("self", hal.Link{Href: self}).
		AddLink("home", hal.Link{Href: h.routes.MustHref(ctrlHome, opGet, nil)}).
		AddLink("sitemap", hal.Link{Href: h.routes.MustHref(ctrlHome, opSitemap, nil)}).
		EmbedAll("keys", embedded)

	obj.AddTemplate(hal.TemplateSelf, hal.Template{
		Title:  "API Keys",
		Method: http.MethodGet,
		Target: self,
	})
	obj.AddTemplate(hal.TemplateDefault, hal.Template{
		Title:       "Create API Key",
		Method:      http.MethodPost,
		Target:      h.routes.MustHref(ctrlAPIKeys, opCreate, nil),
		ContentType: "application/json",
		Properties: []hal.Property{
			{Name: "name", Prompt: "Name", Type: hal.TypeText, Required: true},
			{Name: "expiresAt", Prompt: "Expires (RFC 3339)", Type: hal.TypeText},
		},
	})
	obj.AddTemplate(hal.TemplateBulkDelete, hal.Template{
		Title:       "Delete API Keys",
		Method:      http.MethodDelete,
		Target:      h.routes.MustHref(ctrlAPIKeys, opBulkDelete, nil),
		ContentType: "application/json",
		Properties: []hal.Property{
			{Name: "keyIds", Type: hal.TypeArray, Required: true},
		},
	})

	if err := h.addPagingTemplates(obj, ctrlAPIKeys, page.Next, page.Prev); err != nil {
		return nil, err
	}
	return obj, nil
}

func (h *Handler) respondKeyCollection(w http.ResponseWriter, r *http.Request, page paging.Page[apikey.Key]) {
	obj, err := h.keyCollection(page)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeHAL(w, r, http.StatusOK, obj)
}

// ListKeys renders the first page of the actor's keys.
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	page, err := h.keys.List(r.Context(), actor.ID, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondKeyCollection(w, r, page)
}

// PageKeys renders the page named by an executed navigation template.
func (h *Handler) PageKeys(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	data, err := decodeBody(r)
	if err != nil {
		h.writeErrorStatus(w, http.StatusBadRequest, "malformed body")
		return
	}
	in, err := h.pagingInstructionFrom(data)
	if err != nil {
		h.writeErrorStatus(w, http.StatusUnprocessableEntity, "malformed paging instruction")
		return
	}

	page, err := h.keys.List(r.Context(), actor.ID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondKeyCollection(w, r, page)
}

// CreateKey generates a key and returns it with the raw secret, shown this
// one time only.
func (h *Handler) CreateKey(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	data, err := decodeBody(r)
	if err != nil {
		h.writeErrorStatus(w, http.StatusBadRequest, "malformed body")
		return
	}

	name := stringField(data, "name")
	if name == "" {
		h.writeError(w, &hal.ValidationError{Kind: hal.MissingRequiredField, Field: "name"})
		h.countExecution(hal.TemplateDefault, "invalid")
		return
	}

	var expiresAt *time.Time
	if raw := stringField(data, "expiresAt"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeErrorStatus(w, http.StatusUnprocessableEntity, "expiresAt must be RFC 3339")
			h.countExecution(hal.TemplateDefault, "invalid")
			return
		}
		expiresAt = &t
	}

	k, secret, err := h.keys.Create(r.Context(), actor.ID, name, expiresAt)
	if err != nil {
		h.writeError(w, err)
		h.countExecution(hal.TemplateDefault, "error")
		return
	}
	h.countExecution(hal.TemplateDefault, "ok")

	obj := keyResource(k).
		Set("secret", secret).
		AddLink("collection", hal.Link{Href: h.routes.MustHref(ctrlAPIKeys, opList, nil)})
	h.writeHAL(w, r, http.StatusCreated, obj)
}

// BulkDeleteKeys deletes the selected keys and re-renders the collection.
func (h *Handler) BulkDeleteKeys(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	data, err := decodeBody(r)
	if err != nil {
		h.writeErrorStatus(w, http.StatusBadRequest, "malformed body")
		return
	}

	ids := stringsField(data, "keyIds")
	if len(ids) == 0 {
		h.writeError(w, &hal.ValidationError{Kind: hal.EmptySelection, Field: "keyIds"})
		h.countExecution(hal.TemplateBulkDelete, "invalid")
		return
	}

	if err := h.keys.BulkDelete(r.Context(), actor.ID, ids); err != nil {
		h.writeError(w, err)
		h.countExecution(hal.TemplateBulkDelete, "error")
		return
	}
	h.countExecution(hal.TemplateBulkDelete, "ok")

	page, err := h.keys.List(r.Context(), actor.ID, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondKeyCollection(w, r, page)
}

func (h *Handler) countExecution(template, status string) {
	if h.metrics != nil {
		h.metrics.TemplateExecutions.WithLabelValues(template, status).Inc()
	}
}
