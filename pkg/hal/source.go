package hal

import "strings"

// Source identifies where a property's submitted value comes from.
type Source string

const (
	// SourceValue: the template carries an explicit value.
	SourceValue Source = "value"
	// SourceSelection: the value is the user's current selection set.
	SourceSelection Source = "selection"
	// SourceForm: the value comes from form input or the resource itself.
	SourceForm Source = "form"
)

// selectionSuffix marks selection-bound properties by naming convention,
// standing in for an explicit schema annotation.
const selectionSuffix = "Ids"

// SourceOf resolves which source supplies a property's value. An explicit
// value always wins, even for array-typed properties; the selection rule
// applies next, and everything else is form input.
func SourceOf(p Property) Source {
	if p.Value != nil {
		return SourceValue
	}
	if p.Type == TypeArray || strings.HasSuffix(p.Name, selectionSuffix) {
		return SourceSelection
	}
	return SourceForm
}
