package hal

import "testing"

func TestConfirmationFor(t *testing.T) {
	tests := []struct {
		name        string
		template    Template
		selections  []string
		wantTitle   string
		wantMessage string
		wantConfirm string
		wantVariant string
	}{
		{
			name:        "delete with one selection pluralizes as item",
			template:    Template{Title: "Delete keys", Method: "DELETE"},
			selections:  []string{"k1"},
			wantTitle:   "Delete keys",
			wantMessage: "Are you sure you want to delete 1 item? This action cannot be undone.",
			wantConfirm: "Delete",
			wantVariant: VariantDestructive,
		},
		{
			name:        "delete with two selections pluralizes as items",
			template:    Template{Title: "Delete keys", Method: "DELETE"},
			selections:  []string{"k1", "k2"},
			wantTitle:   "Delete keys",
			wantMessage: "Are you sure you want to delete 2 items? This action cannot be undone.",
			wantConfirm: "Delete",
			wantVariant: VariantDestructive,
		},
		{
			name:        "non-delete with selections",
			template:    Template{Title: "Archive", Method: "POST"},
			selections:  []string{"a", "b", "c"},
			wantTitle:   "Archive",
			wantMessage: "Apply this action to 3 items?",
			wantConfirm: "Confirm",
			wantVariant: VariantDefault,
		},
		{
			name:        "empty selection slice falls back to single-item delete message",
			template:    Template{Method: "DELETE"},
			selections:  []string{},
			wantTitle:   "Confirm Action",
			wantMessage: "Are you sure you want to delete this item? This action cannot be undone.",
			wantConfirm: "Delete",
			wantVariant: VariantDestructive,
		},
		{
			name:        "delete without selections",
			template:    Template{Title: "Revoke key", Method: "DELETE"},
			wantTitle:   "Revoke key",
			wantMessage: "Are you sure you want to delete this item? This action cannot be undone.",
			wantConfirm: "Delete",
			wantVariant: VariantDestructive,
		},
		{
			name:        "titled non-delete interpolates the title",
			template:    Template{Title: "rotate the signing secret", Method: "POST"},
			wantTitle:   "rotate the signing secret",
			wantMessage: "Are you sure you want to rotate the signing secret?",
			wantConfirm: "Confirm",
			wantVariant: VariantDefault,
		},
		{
			name:        "untitled non-delete gets the generic phrase",
			template:    Template{Method: "POST"},
			wantTitle:   "Confirm Action",
			wantMessage: "Are you sure you want to continue?",
			wantConfirm: "Confirm",
			wantVariant: VariantDefault,
		},
		{
			name:        "lowercase delete is not treated as destructive",
			template:    Template{Title: "remove", Method: "delete"},
			wantTitle:   "remove",
			wantMessage: "Are you sure you want to remove?",
			wantConfirm: "Confirm",
			wantVariant: VariantDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfirmationFor(tt.template, ExecutionContext{Selections: tt.selections})
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
			if got.ConfirmLabel != tt.wantConfirm {
				t.Errorf("ConfirmLabel = %q, want %q", got.ConfirmLabel, tt.wantConfirm)
			}
			if got.CancelLabel != "Cancel" {
				t.Errorf("CancelLabel = %q, want Cancel", got.CancelLabel)
			}
			if got.Variant != tt.wantVariant {
				t.Errorf("Variant = %q, want %q", got.Variant, tt.wantVariant)
			}
		})
	}
}
