// Package identity threads the resolved caller through context.Context so
// lifecycle services can attribute every create, update and archive without
// holding per-request state.
package identity

import "context"

// UserType discriminates the three authenticated audiences.
type UserType string

const (
	UserTypeStaff    UserType = "staff"
	UserTypeStudent  UserType = "student"
	UserTypeGuardian UserType = "guardian"
)

// SystemActorID attributes bootstrap and background mutations.
const SystemActorID = "00000000-0000-0000-0000-000000000000"

// Actor is the identity bound to the current request.
type Actor struct {
	ID          string
	Type        UserType
	AccessLevel int
}

type contextKey struct{}

// WithActor binds the actor to the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// FromContext returns the bound actor, or false when none is present.
func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(contextKey{}).(Actor)
	return actor, ok
}

// ActorID returns the bound actor id, falling back to the system actor.
func ActorID(ctx context.Context) string {
	if actor, ok := FromContext(ctx); ok && actor.ID != "" {
		return actor.ID
	}
	return SystemActorID
}
