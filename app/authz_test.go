package app

import (
	"errors"
	"testing"

	"github.com/artpar/launchpad/domain/account"
)

func TestRequireRole(t *testing.T) {
	admin := account.Account{ID: "a1", Role: account.RoleAdmin, Status: account.StatusActive}
	user := account.Account{ID: "u1", Role: account.RoleUser, Status: account.StatusActive}
	suspended := account.Account{ID: "u2", Role: account.RoleAdmin, Status: account.StatusSuspended}

	tests := []struct {
		name    string
		actor   account.Account
		min     account.Role
		opts    AuthzOpts
		wantErr bool
	}{
		{"admin passes admin check", admin, account.RoleAdmin, AuthzOpts{}, false},
		{"user fails admin check", user, account.RoleAdmin, AuthzOpts{}, true},
		{"user passes user check", user, account.RoleUser, AuthzOpts{}, false},
		{"owner passes despite role", user, account.RoleAdmin, AuthzOpts{AllowOwner: true, ResourceUserID: "u1"}, false},
		{"non-owner still fails", user, account.RoleAdmin, AuthzOpts{AllowOwner: true, ResourceUserID: "u9"}, true},
		{"owner check needs a resource owner", user, account.RoleAdmin, AuthzOpts{AllowOwner: true}, true},
		{"suspended admin fails everything", suspended, account.RoleUser, AuthzOpts{}, true},
		{"suspended owner fails too", suspended, account.RoleUser, AuthzOpts{AllowOwner: true, ResourceUserID: "u2"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(tt.actor, tt.min, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("RequireRole() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var forbidden *ForbiddenError
				if !errors.As(err, &forbidden) {
					t.Errorf("error type = %T, want *ForbiddenError", err)
				}
			}
		})
	}
}
