package lti

import (
	"context"
)

// UserStore is the user persistence collaborator the backend relies on.
// GetOrCreateByUsername must be safe against concurrent creation of the same
// username: at most one record is created and exactly one caller sees
// created == true.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetOrCreateByUsername(ctx context.Context, username string) (*User, bool, error)
	SaveProfile(ctx context.Context, user *User) (*User, error)
}

// LoginTracker is implemented by stores that record successful logins
type LoginTracker interface {
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// LaunchUserStore persists the LTI side of the identity
type LaunchUserStore interface {
	FindBySubject(ctx context.Context, issuer, subject string) (*LaunchUser, error)
	Save(ctx context.Context, user *LaunchUser) (*LaunchUser, error)
}

// UsernameCleaner turns a launch user id into a local username. It must be
// pure and deterministic.
type UsernameCleaner func(launchUserID string) string

// UserConfigurer is invoked for every resolved user, with created set when
// the store created the record during this authentication.
type UserConfigurer interface {
	ConfigureUser(ctx context.Context, user *User, created bool) (*User, error)
}

// UserConfigurerFunc adapts a function to UserConfigurer
type UserConfigurerFunc func(ctx context.Context, user *User, created bool) (*User, error)

// ConfigureUser implements UserConfigurer.
func (f UserConfigurerFunc) ConfigureUser(ctx context.Context, user *User, created bool) (*User, error) {
	return f(ctx, user, created)
}

// AuthenticabilityCheck decides if a resolved user may authenticate
type AuthenticabilityCheck func(user *User) bool
