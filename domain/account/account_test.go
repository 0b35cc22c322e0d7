package account

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleAdmin, RoleUser, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleUser, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{Role("unknown"), RoleUser, false},
		{Role(""), RoleUser, false},
	}

	for _, tt := range tests {
		if got := tt.role.AtLeast(tt.min); got != tt.want {
			t.Errorf("%q.AtLeast(%q) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}

func TestActive(t *testing.T) {
	if !(Account{Status: StatusActive}).Active() {
		t.Error("active account reported inactive")
	}
	if (Account{Status: StatusSuspended}).Active() {
		t.Error("suspended account reported active")
	}
}
