package hal

import "strings"

// Kind classifies how a template should be presented to the user.
type Kind string

const (
	// KindNavigation is a template that is semantically a GET with no user
	// input: follow it immediately. Pagination templates are the common
	// case, expressed as POST-with-hidden-cursor so paging state never
	// leaks into the query string.
	KindNavigation Kind = "navigation"

	// KindForm is a template requiring user-entered data before submission.
	KindForm Kind = "form"

	// KindAction is a confirmable mutation with no user input beyond the
	// confirmation itself.
	KindAction Kind = "action"
)

// Categorize classifies a template from its method and the visibility of its
// properties. Method comparison is case-insensitive; a missing or
// unrecognized method counts as no valid method.
func Categorize(t Template) Kind {
	method := strings.ToUpper(t.Method)

	visible := 0
	for _, p := range t.Properties {
		if p.Type != TypeHidden {
			visible++
		}
	}

	switch {
	case (method == "GET" || method == "POST") && visible == 0:
		return KindNavigation
	case visible > 0:
		return KindForm
	default:
		return KindAction
	}
}
