package app

import (
	"fmt"

	"github.com/artpar/launchpad/domain/account"
)

// ForbiddenError is returned when an actor lacks the rights for an
// operation. The web layer maps it to 403.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// AuthzOpts tunes a role check. AllowOwner lets an actor through when they
// own the resource, regardless of role.
type AuthzOpts struct {
	AllowOwner     bool
	ResourceUserID string
}

// RequireRole checks that the actor holds at least the minimum role, or owns
// the resource when ownership is allowed. Suspended accounts never pass.
func RequireRole(actor account.Account, min account.Role, opts AuthzOpts) error {
	if !actor.Active() {
		return &ForbiddenError{Reason: "account is not active"}
	}
	if opts.AllowOwner && opts.ResourceUserID != "" && opts.ResourceUserID == actor.ID {
		return nil
	}
	if !actor.Role.AtLeast(min) {
		return &ForbiddenError{Reason: fmt.Sprintf("requires role %s or above", min)}
	}
	return nil
}
