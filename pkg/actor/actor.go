// Package actor identifies the user performing an action. Every mutating
// operation of the reconciliation engine takes the actor ID as an explicit
// argument; this package only carries the authenticated identity from the
// HTTP middleware to the handlers.
package actor

import (
	"context"
	"fmt"
)

// Warehouse roles.
const (
	RoleAdministrator = "administrator"
	RoleSupervisor    = "supervisor"
	RoleDispatcher    = "dispatcher"
)

// Actor represents the authenticated user performing an action.
type Actor struct {
	// ID is the unique identifier of the actor (user ID)
	ID string `json:"id"`

	// Name is the actor's display name
	Name string `json:"name"`

	// Username is the actor's login name
	Username string `json:"username"`

	// Role is the actor's warehouse role
	Role string `json:"role"`
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "system"
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Username)
}

// IsAdministrator reports whether the actor holds the administrator role.
func (a *Actor) IsAdministrator() bool {
	return a != nil && a.Role == RoleAdministrator
}

// contextKey is the type for context keys to avoid collisions
type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// MustFromContext retrieves the Actor from the context.
// Panics if no actor is present. Use only behind the auth middleware.
func MustFromContext(ctx context.Context) *Actor {
	a := FromContext(ctx)
	if a == nil {
		panic("actor not found in context")
	}
	return a
}
