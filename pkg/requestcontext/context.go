// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
// The request time accessor doubles as the injectable clock: every business
// decision that needs "now" reads it from context so tests can pin time.
//
// Usage in services:
//
//	actor := requestcontext.ActorID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	actorIDKey     struct{}
	actorRoleKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Role is the coarse capability level of the authenticated actor.
type Role string

const (
	// RoleOperator registers transactions and runs screenings.
	RoleOperator Role = "operator"

	// RoleComplianceOfficer additionally clears blocks, overrides locked
	// default activities and deletes records.
	RoleComplianceOfficer Role = "compliance_officer"
)

// ActorID retrieves the authenticated actor identifier from the context.
// Returns "" if not set (e.g. internal workers).
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(actorIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithActorID injects an actor identifier into the context.
func WithActorID(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actor)
}

// ActorRole retrieves the authenticated actor's role. Defaults to operator.
func ActorRole(ctx context.Context) Role {
	if v, ok := ctx.Value(actorRoleKey{}).(Role); ok && v != "" {
		return v
	}
	return RoleOperator
}

// WithActorRole injects the actor's role into the context.
func WithActorRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, actorRoleKey{}, role)
}

// RequestID retrieves the correlation ID for the current request.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now returns the request time if one was injected, otherwise wall-clock time.
// Services must use this instead of time.Now so staleness and window math is
// deterministic under test.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return v
	}
	return time.Now()
}

// WithTime pins the request time in the context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
