package hal

import "fmt"

// ValidationKind discriminates template payload validation failures.
type ValidationKind string

const (
	// MissingRequiredField: a required form-sourced property had no value
	// from form data, the resource, or the template itself.
	MissingRequiredField ValidationKind = "missing_required_field"
	// EmptySelection: a required selection-sourced property had zero
	// selected items.
	EmptySelection ValidationKind = "empty_selection"
)

// ValidationError reports a payload build failure. It is raised
// synchronously before any I/O and must never trigger a retry: retrying a
// build-time validation failure cannot succeed without caller changes.
type ValidationError struct {
	Kind  ValidationKind
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case EmptySelection:
		return fmt.Sprintf("no items selected for %q", e.Field)
	default:
		return fmt.Sprintf("required field %q is missing", e.Field)
	}
}

// Build assembles the request payload for a template execution. Properties
// are visited in declaration order; readOnly properties are displayed but
// never submitted. The output is a flat map whose key set and values matter;
// iteration order does not.
func Build(ctx ExecutionContext) (map[string]any, error) {
	payload := make(map[string]any)

	for _, p := range ctx.Template.Properties {
		if p.ReadOnly {
			continue
		}

		switch SourceOf(p) {
		case SourceValue:
			// Copied verbatim: falsy values (0, false, "") are real values.
			payload[p.Name] = p.Value

		case SourceSelection:
			if len(ctx.Selections) == 0 {
				if p.Required {
					return nil, &ValidationError{Kind: EmptySelection, Field: p.Name}
				}
				continue
			}
			// The full ordered selection set, trusted as-is: never
			// partial, never deduplicated.
			selected := make([]string, len(ctx.Selections))
			copy(selected, ctx.Selections)
			payload[p.Name] = selected

		case SourceForm:
			// Presence, not truthiness, governs form data.
			if v, ok := ctx.FormData[p.Name]; ok {
				payload[p.Name] = v
				continue
			}
			if ctx.Resource != nil {
				if v, ok := ctx.Resource.Property(p.Name); ok {
					payload[p.Name] = v
					continue
				}
			}
			if p.Required {
				return nil, &ValidationError{Kind: MissingRequiredField, Field: p.Name}
			}
		}
	}

	return payload, nil
}
