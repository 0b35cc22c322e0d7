package web

import (
	"net/http"
	"time"

	"github.com/artpar/launchpad/app"
	"github.com/artpar/launchpad/domain/account"
	"github.com/artpar/launchpad/pkg/hal"
	"github.com/go-chi/chi/v5"
)

var roleOptions = &hal.Options{
	Inline: []hal.SelectValue{
		{Prompt: "User", Value: string(account.RoleUser)},
		{Prompt: "Admin", Value: string(account.RoleAdmin)},
	},
}

var statusOptions = &hal.Options{
	Inline: []hal.SelectValue{
		{Prompt: "Active", Value: account.StatusActive},
		{Prompt: "Suspended", Value: account.StatusSuspended},
	},
}

// accountResource renders one account with its update form and delete
// action.
func (h *Handler) accountResource(a account.Account) *hal.Object {
	params := map[string]string{"id": a.ID}
	self := h.routes.MustHref(ctrlAccounts, opGet, params)

	obj := hal.NewObject().
		Set("id", a.ID).
		Set("email", a.Email).
		Set("name", a.Name).
		Set("role", string(a.Role)).
		Set("status", a.Status).
		Set("createdAt", a.CreatedAt.Format(time.RFC3339)).
		Set("updatedAt", a.UpdatedAt.Format(time.RFC3339)).
		AddLink("self", hal.Link{Href: self}).
		AddLink("collection", hal.Link{Href: h.routes.MustHref(ctrlAccounts, opList, nil)})

	obj.AddTemplate(hal.TemplateDefault, hal.Template{
		Title:       "Edit Account",
		Method:      http.MethodPut,
		Target:      h.routes.MustHref(ctrlAccounts, opUpdate, params),
		ContentType: "application/json",
		Properties: []hal.Property{
			{Name: "name", Prompt: "Name", Type: hal.TypeText, Value: a.Name},
			{Name: "role", Prompt: "Role", Type: hal.TypeSelect, Value: string(a.Role), Options: roleOptions},
			{Name: "status", Prompt: "Status", Type: hal.TypeSelect, Value: a.Status, Options: statusOptions},
		},
	})
	obj.AddTemplate("delete", hal.Template{
		Title:  "Delete " + a.Email,
		Method: http.MethodDelete,
		Target: h.routes.MustHref(ctrlAccounts, opDelete, params),
	})
	return obj
}

// accountCollection renders the account collection (admin only).
func (h *Handler) accountCollection(accounts []account.Account, total int) *hal.Object {
	self := h.routes.MustHref(ctrlAccounts, opList, nil)

	embedded := make([]*hal.Object, 0, len(accounts))
	for _, a := range accounts {
		embedded = append(embedded, h.accountResource(a))
	}

	obj := hal.NewObject().
		Set("count", total).
		AddLink("self", hal.Link{Href: self}).
		AddLink("home", hal.Link{Href: h.routes.MustHref(ctrlHome, opGet, nil)}).
		AddLink("sitemap", hal.Link{Href: h.routes.MustHref(ctrlHome, opSitemap, nil)}).
		EmbedAll("accounts", embedded)

	obj.AddTemplate(hal.TemplateSelf, hal.Template{
		Title:  "Accounts",
		Method: http.MethodGet,
		Target: self,
	})
	obj.AddTemplate(hal.TemplateDefault, hal.Template{
		Title:       "Create Account",
		Method:      http.MethodPost,
		Target:      h.routes.MustHref(ctrlAccounts, opCreate, nil),
		ContentType: "application/json",
		Properties: []hal.Property{
			{Name: "email", Prompt: "Email", Type: hal.TypeText, Required: true},
			{Name: "name", Prompt: "Name", Type: hal.TypeText},
			{Name: "role", Prompt: "Role", Type: hal.TypeSelect, Options: roleOptions},
		},
	})
	return obj
}

// ListAccounts renders the account collection. Admin only.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	if err := app.RequireRole(actor, account.RoleAdmin, app.AuthzOpts{}); err != nil {
		h.writeError(w, err)
		return
	}

	page, err := h.accounts.List(r.Context(), nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	total, err := h.accounts.Count(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeHAL(w, r, http.StatusOK, h.accountCollection(page.Items, total))
}

// CreateAccount registers a new account. Admin only.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	if err := app.RequireRole(actor, account.RoleAdmin, app.AuthzOpts{}); err != nil {
		h.writeError(w, err)
		return
	}

	data, err := decodeBody(r)
	if err != nil {
		h.writeErrorStatus(w, http.StatusBadRequest, "malformed body")
		return
	}
	email := stringField(data, "email")
	if email == "" {
		h.writeError(w, &hal.ValidationError{Kind: hal.MissingRequiredField, Field: "email"})
		h.countExecution(hal.TemplateDefault, "invalid")
		return
	}
	role := account.Role(stringField(data, "role"))
	if role == "" {
		role = account.RoleUser
	}

	a, err := h.accounts.Create(r.Context(), email, stringField(data, "name"), role)
	if err != nil {
		h.writeError(w, err)
		h.countExecution(hal.TemplateDefault, "error")
		return
	}
	h.countExecution(hal.TemplateDefault, "ok")
	h.writeHAL(w, r, http.StatusCreated, h.accountResource(a))
}

// GetAccount renders one account. Admins may read any account; everyone
// else only their own.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id := chi.URLParam(r, "id")

	if err := app.RequireRole(actor, account.RoleAdmin, app.AuthzOpts{AllowOwner: true, ResourceUserID: id}); err != nil {
		h.writeError(w, err)
		return
	}

	a, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeHAL(w, r, http.StatusOK, h.accountResource(a))
}

// UpdateAccount edits an account. Owners may rename themselves; role and
// status changes need an admin.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id := chi.URLParam(r, "id")

	if err := app.RequireRole(actor, account.RoleAdmin, app.AuthzOpts{AllowOwner: true, ResourceUserID: id}); err != nil {
		h.writeError(w, err)
		return
	}

	data, err := decodeBody(r)
	if err != nil {
		h.writeErrorStatus(w, http.StatusBadRequest, "malformed body")
		return
	}

	a, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if name := stringField(data, "name"); name != "" {
		a.Name = name
	}
	_, roleChange := data["role"]
	_, statusChange := data["status"]
	if roleChange || statusChange {
		if err := app.RequireRole(actor, account.RoleAdmin, app.AuthzOpts{}); err != nil {
			h.writeError(w, err)
			return
		}
		if roleChange {
			a.Role = account.Role(stringField(data, "role"))
		}
		if statusChange {
			a.Status = stringField(data, "status")
		}
	}

	updated, err := h.accounts.Update(r.Context(), a)
	if err != nil {
		h.writeError(w, err)
		h.countExecution(hal.TemplateDefault, "error")
		return
	}
	h.countExecution(hal.TemplateDefault, "ok")
	h.writeHAL(w, r, http.StatusOK, h.accountResource(updated))
}

// DeleteAccount removes an account. Admin only.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	if err := app.RequireRole(actor, account.RoleAdmin, app.AuthzOpts{}); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		h.countExecution("delete", "error")
		return
	}
	h.countExecution("delete", "ok")
	w.WriteHeader(http.StatusNoContent)
}
