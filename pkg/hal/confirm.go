package hal

import "fmt"

// Confirmation describes the confirm/cancel dialog shown before a template
// executes.
type Confirmation struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Variant      string
}

// Dialog variants.
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// fallbackTitle is used when the template carries no title of its own.
const fallbackTitle = "Confirm Action"

// ConfirmationFor derives the confirmation dialog for a template from its
// method and the current selection count.
//
// The method comparison here is exact-case against "DELETE", unlike
// Categorize: server adapters emit uppercase methods, and a lowercase
// "delete" deliberately gets the non-destructive treatment until that
// convention is revisited.
func ConfirmationFor(t Template, ctx ExecutionContext) Confirmation {
	isDelete := t.Method == "DELETE"

	title := t.Title
	if title == "" {
		title = fallbackTitle
	}

	n := len(ctx.Selections)
	var message string
	switch {
	case n > 0 && isDelete:
		message = fmt.Sprintf("Are you sure you want to delete %d %s? This action cannot be undone.", n, pluralItems(n))
	case n > 0:
		message = fmt.Sprintf("Apply this action to %d %s?", n, pluralItems(n))
	case isDelete:
		message = "Are you sure you want to delete this item? This action cannot be undone."
	case t.Title != "":
		message = fmt.Sprintf("Are you sure you want to %s?", t.Title)
	default:
		message = "Are you sure you want to continue?"
	}

	confirm := "Confirm"
	variant := VariantDefault
	if isDelete {
		confirm = "Delete"
		variant = VariantDestructive
	}

	return Confirmation{
		Title:        title,
		Message:      message,
		ConfirmLabel: confirm,
		CancelLabel:  "Cancel",
		Variant:      variant,
	}
}

func pluralItems(n int) string {
	if n == 1 {
		return "item"
	}
	return "items"
}
