package lti

import (
	"context"

	"github.com/goliatone/go-errors"
)

// ProfileSync is the default UserConfigurer. It copies the launch user's
// profile onto the local user and records the association back on the
// launch user.
type ProfileSync struct {
	users       UserStore
	launchUsers LaunchUserStore
	logger      Logger
	provider    LoggerProvider
}

var _ UserConfigurer = (*ProfileSync)(nil)

// NewProfileSync creates a ProfileSync. launchUsers may be nil, in which
// case the association is set on the launch but not persisted.
func NewProfileSync(users UserStore, launchUsers LaunchUserStore) *ProfileSync {
	provider, logger := ResolveLogger("lti.profile_sync", nil, nil)
	return &ProfileSync{
		users:       users,
		launchUsers: launchUsers,
		logger:      logger,
		provider:    provider,
	}
}

// WithLogger overrides the logger used by the profile sync.
func (p *ProfileSync) WithLogger(l Logger) *ProfileSync {
	p.provider, p.logger = ResolveLogger("lti.profile_sync", p.provider, l)
	return p
}

// WithLoggerProvider overrides the logger provider used by the profile sync.
func (p *ProfileSync) WithLoggerProvider(provider LoggerProvider) *ProfileSync {
	if provider == nil {
		return p
	}
	p.provider, p.logger = ResolveLogger("lti.profile_sync", provider, nil)
	return p
}

// ConfigureUser implements UserConfigurer.
func (p *ProfileSync) ConfigureUser(ctx context.Context, user *User, created bool) (*User, error) {
	launch, ok := LaunchFromContext(ctx)
	if !ok || launch.User == nil {
		p.logger.Warn("unable to update user without LTI launch data",
			"username", user.String(),
			"reason", ErrMissingLaunch.TextCode,
		)
		return user, nil
	}

	if user == nil {
		return nil, nil
	}

	ApplyLaunchProfile(user, launch.User)
	if created {
		user.AddMetadata("lti_issuer", launch.Issuer)
		user.AddMetadata("lti_subject", launch.User.Subject)
	}

	if p.users != nil {
		updated, err := p.users.SaveProfile(ctx, user)
		if err != nil {
			return user, errors.Wrap(err, errors.CategoryInternal, "failed to save LTI launch user profile").
				WithMetadata(map[string]any{"username": user.Username})
		}
		if updated != nil {
			user = updated
		}
	}

	launch.User.Associate(user)

	if p.launchUsers != nil {
		saved, err := p.launchUsers.Save(ctx, launch.User)
		if err != nil {
			return user, errors.Wrap(err, errors.CategoryInternal, "failed to associate LTI user").
				WithMetadata(map[string]any{
					"username": user.Username,
					"subject":  launch.User.Subject,
				})
		}
		if saved != nil && saved != launch.User {
			saved.AuthUser = user
			*launch.User = *saved
		}
	}

	return user, nil
}

// ApplyLaunchProfile copies non-empty profile claims onto user. Empty claims
// never clear existing values.
func ApplyLaunchProfile(user *User, lu *LaunchUser) {
	if user == nil || lu == nil {
		return
	}

	if lu.GivenName != "" {
		user.FirstName = lu.GivenName
	}

	if lu.FamilyName != "" {
		user.LastName = lu.FamilyName
	}

	if lu.Email != "" {
		user.Email = lu.Email
	}
}
