package web

import (
	"net/http"

	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/pkg/hal"
)

// pagingProperty is the hidden property carrying a serialized paging
// instruction through a navigation template.
const pagingProperty = "pagingInstruction"

// addPagingTemplates appends next/prev navigation templates to a collection
// when the page has neighbours. The instruction rides as a hidden property,
// so the templates categorize as navigation despite being POSTs.
func (h *Handler) addPagingTemplates(obj *hal.Object, controller string, next, prev paging.Instruction) error {
	target := h.routes.MustHref(controller, opPage, nil)

	add := func(key, title string, in paging.Instruction) error {
		if in == nil {
			return nil
		}
		encoded, err := paging.Encode(in)
		if err != nil {
			return err
		}
		obj.AddTemplate(key, hal.Template{
			Title:       title,
			Method:      http.MethodPost,
			Target:      target,
			ContentType: "application/json",
			Properties: []hal.Property{
				{Name: pagingProperty, Type: hal.TypeHidden, Value: encoded},
			},
		})
		return nil
	}

	if err := add(hal.TemplateNext, "Next page", next); err != nil {
		return err
	}
	return add(hal.TemplatePrev, "Previous page", prev)
}

// pagingInstructionFrom reads and decodes the hidden paging property from an
// executed navigation template's payload.
func (h *Handler) pagingInstructionFrom(data map[string]any) (paging.Instruction, error) {
	encoded := stringField(data, pagingProperty)
	if encoded == "" {
		return nil, nil
	}
	return h.decodePaging(encoded)
}
