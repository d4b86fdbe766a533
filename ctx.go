package lti

import (
	"context"

	"github.com/goliatone/go-router"
)

// DefaultLaunchKey is the router Locals key upstream middleware stores the
// launch under.
const DefaultLaunchKey = "lti_launch"

var launchCtxKey = &contextKey{"lti_launch"}
var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// Launch is the per-request LTI launch context. It is produced by the launch
// validator earlier in the request lifecycle and only read here, except for
// the association written back onto User.
type Launch struct {
	User         *LaunchUser
	Issuer       string
	DeploymentID string
	ContextID    string
	Roles        []string
	Claims       map[string]any
}

// UserID returns the asserted LTI user id, empty when the launch has no user.
func (l *Launch) UserID() string {
	if l == nil || l.User == nil {
		return ""
	}
	return l.User.Subject
}

// WithLaunch attaches the launch to the context
func WithLaunch(ctx context.Context, launch *Launch) context.Context {
	return context.WithValue(ctx, launchCtxKey, launch)
}

// LaunchFromContext finds the launch in the context. A nil launch stored in
// the context is reported as missing.
func LaunchFromContext(ctx context.Context) (*Launch, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(launchCtxKey).(*Launch)
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

// LaunchFromRouterContext extracts the launch from the router context Locals
func LaunchFromRouterContext(ctx router.Context, key string) (*Launch, bool) {
	if key == "" {
		key = DefaultLaunchKey
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	launch, ok := raw.(*Launch)
	if !ok || launch == nil {
		return nil, false
	}
	return launch, true
}

// WithUser sets the User in the given context
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext finds the user from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok && raw != nil
}
