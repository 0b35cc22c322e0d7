package web

import (
	"net/http"
	"time"

	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/domain/session"
	"github.com/artpar/launchpad/pkg/hal"
)

// sessionResource renders one session. The signature never leaves the
// server except at issuance.
func sessionResource(s session.Session) *hal.Object {
	obj := hal.NewObject().
		Set("id", s.ID).
		Set("userAgent", s.UserAgent).
		Set("issuedAt", s.IssuedAt.Format(time.RFC3339)).
		Set("expiresAt", s.ExpiresAt.Format(time.RFC3339))
	if s.LastSeen != nil {
		obj.Set("lastSeen", s.LastSeen.Format(time.RFC3339))
	}
	return obj
}

// sessionCollection renders the session collection.
func (h *Handler) sessionCollection(page paging.Page[session.Session]) (*hal.Object, error) {
	self := h.routes.MustHref(ctrlSessions, opList, nil)

	embedded := make([]*hal.Object, 0, len(page.Items))
	for _, s := range page.Items {
		embedded = append(embedded, sessionResource(s))
	}

	obj := hal.NewObject().
		Set("count", len(page.Items)).
		AddLink("self", hal.Link{Href: self}).
		AddLink("home", hal.Link{Href: h.routes.MustHref(ctrlHome, opGet, nil)}).
		AddLink("sitemap", hal.Link{Href: h.routes.MustHref(ctrlHome, opSitemap, nil)}).
		EmbedAll("sessions", embedded)

	obj.AddTemplate(hal.TemplateSelf, hal.Template{
		Title:  "Sessions",
		Method: http.MethodGet,
		Target: self,
	})
	obj.AddTemplate(hal.TemplateDefault, hal.Template{
		Title:  "Start New Session",
		Method: http.MethodPost,
		Target: h.routes.MustHref(ctrlSessions, opCreate, nil),
	})
	obj.AddTemplate(hal.TemplateBulkDelete, hal.Template{
		Title:       "Revoke Sessions",
		Method:      http.MethodDelete,
		Target:      h.routes.MustHref(ctrlSessions, opBulkDelete, nil),
		ContentType: "application/json",
		Properties: []hal.Property{
			{Name: "sessionIds", Type: hal.TypeArray, Required: true},
		},
	})

	if err := h.addPagingTemplates(obj, ctrlSessions, page.Next, page.Prev); err != nil {
		return nil, err
	}
	return obj, nil
}

func (h *Handler) respondSessionCollection(w http.ResponseWriter, r *http.Request, page paging.Page[session.Session]) {
	obj, err := h.sessionCollection(page)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeHAL(w, r, http.StatusOK, obj)
}

// ListSessions renders the first page of the actor's sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	page, err := h.sessions.List(r.Context(), actor.ID, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondSessionCollection(w, r, page)
}

// PageSessions renders the page named by an executed navigation template.
func (h *Handler) PageSessions(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.sessions.List(r.Context(), actor.ID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondSessionCollection(w, r, page)
}

// CreateSession issues a fresh session for the actor and returns it with
// the signature, shown this one time only.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	sess, err := h.sessions.Issue(r.Context(), actor.ID, r.UserAgent())
	if err != nil {
		h.writeError(w, err)
		h.countExecution(hal.TemplateDefault, "error")
		return
	}
	h.countExecution(hal.TemplateDefault, "ok")

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Signature,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	obj := sessionResource(sess).
		Set("signature", sess.Signature).
		AddLink("collection", hal.Link{Href: h.routes.MustHref(ctrlSessions, opList, nil)})
	h.writeHAL(w, r, http.StatusCreated, obj)
}

// BulkDeleteSessions revokes the selected sessions and re-renders the
// collection.
func (h *Handler) BulkDeleteSessions(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	data, err := decodeBody(r)
	if err != nil {
		h.writeErrorStatus(w, http.StatusBadRequest, "malformed body")
		return
	}

	ids := stringsField(data, "sessionIds")
	if len(ids) == 0 {
		h.writeError(w, &hal.ValidationError{Kind: hal.EmptySelection, Field: "sessionIds"})
		h.countExecution(hal.TemplateBulkDelete, "invalid")
		return
	}

	if err := h.sessions.BulkDelete(r.Context(), actor.ID, ids); err != nil {
		h.writeError(w, err)
		h.countExecution(hal.TemplateBulkDelete, "error")
		return
	}
	h.countExecution(hal.TemplateBulkDelete, "ok")

	page, err := h.sessions.List(r.Context(), actor.ID, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondSessionCollection(w, r, page)
}
