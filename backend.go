package lti

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Backend authenticates requests carrying an LTI launch. The launch user id
// is trusted: validating the launch itself happens upstream.
//
// By default unknown users are created on first sight. Disable with
// WithCreateUnknownUser(false) to only accept users that already exist.
type Backend struct {
	store       UserStore
	launchUsers LaunchUserStore

	createUnknownUser bool
	cleanUsername     UsernameCleaner
	configurer        UserConfigurer
	canAuthenticate   AuthenticabilityCheck

	activity ActivitySink
	now      func() time.Time
	logger   Logger
	provider LoggerProvider
}

// BackendOption configures a Backend
type BackendOption func(*Backend)

// NewBackend returns a Backend that resolves users through store. Without a
// WithUserConfigurer option, users are synced with a ProfileSync. Launch
// user associations are persisted through WithLaunchUserStore, or through
// store when it also implements LaunchUserStore.
func NewBackend(store UserStore, opts ...BackendOption) *Backend {
	b := &Backend{
		store:             store,
		createUnknownUser: true,
		cleanUsername:     IdentityUsername,
		canAuthenticate:   UserCanAuthenticate,
		activity:          noopActivitySink{},
		now:               time.Now,
	}
	b.provider, b.logger = ResolveLogger("lti.backend", nil, nil)

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	if b.launchUsers == nil {
		if launchUsers, ok := store.(LaunchUserStore); ok {
			b.launchUsers = launchUsers
		}
	}

	if b.configurer == nil {
		b.configurer = NewProfileSync(store, b.launchUsers).WithLoggerProvider(b.provider)
	}

	return b
}

// NewAllowAllUsersBackend returns a Backend whose authenticability check
// always passes, so inactive users are let through.
func NewAllowAllUsersBackend(store UserStore, opts ...BackendOption) *Backend {
	opts = append(opts, WithAuthenticabilityCheck(AllowAllUsers))
	return NewBackend(store, opts...)
}

// WithCreateUnknownUser toggles creating users for unseen launch ids
func WithCreateUnknownUser(create bool) BackendOption {
	return func(b *Backend) {
		b.createUnknownUser = create
	}
}

// WithUsernameCleaner overrides the username cleaning step
func WithUsernameCleaner(clean UsernameCleaner) BackendOption {
	return func(b *Backend) {
		if clean != nil {
			b.cleanUsername = clean
		}
	}
}

// WithLaunchUserStore persists launch user associations made by the
// default ProfileSync. Ignored when WithUserConfigurer is set.
func WithLaunchUserStore(store LaunchUserStore) BackendOption {
	return func(b *Backend) {
		b.launchUsers = store
	}
}

// WithUserConfigurer overrides how resolved users are configured
func WithUserConfigurer(c UserConfigurer) BackendOption {
	return func(b *Backend) {
		b.configurer = c
	}
}

// WithAuthenticabilityCheck overrides the predicate gating resolved users
func WithAuthenticabilityCheck(check AuthenticabilityCheck) BackendOption {
	return func(b *Backend) {
		if check != nil {
			b.canAuthenticate = check
		}
	}
}

// WithActivitySink sets the sink for login activity
func WithActivitySink(sink ActivitySink) BackendOption {
	return func(b *Backend) {
		b.activity = normalizeActivitySink(sink)
	}
}

// WithLogger sets the backend logger
func WithLogger(logger Logger) BackendOption {
	return func(b *Backend) {
		b.provider, b.logger = ResolveLogger("lti.backend", b.provider, logger)
	}
}

// WithLoggerProvider resolves the backend logger from provider
func WithLoggerProvider(provider LoggerProvider) BackendOption {
	return func(b *Backend) {
		b.provider, b.logger = ResolveLogger("lti.backend", provider, nil)
	}
}

// WithClock overrides the time source used for activity events
func WithClock(now func() time.Time) BackendOption {
	return func(b *Backend) {
		if now != nil {
			b.now = now
		}
	}
}

// CreatesUnknownUsers reports if the backend creates users on first sight
func (b *Backend) CreatesUnknownUsers() bool {
	return b.createUnknownUser
}

// CleanUsername runs the configured cleaning step
func (b *Backend) CleanUsername(launchUserID string) string {
	return b.cleanUsername(launchUserID)
}

// CanAuthenticate runs the configured authenticability check
func (b *Backend) CanAuthenticate(user *User) bool {
	return b.canAuthenticate(user)
}

// Authenticate resolves the local user for launchUserID.
//
// A nil user with a nil error means authentication did not succeed: the id
// was empty, the user is unknown and creation is disabled, or the user did
// not pass the authenticability check. Errors are only returned for store
// failures and cancelled contexts.
func (b *Backend) Authenticate(ctx context.Context, launchUserID string) (*User, error) {
	if launchUserID == "" {
		return nil, nil
	}

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled during LTI authentication")
	default:
	}

	username := b.CleanUsername(launchUserID)

	var (
		user    *User
		created bool
		err     error
	)

	if b.createUnknownUser {
		user, created, err = b.store.GetOrCreateByUsername(ctx, username)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to get or create LTI launch user").
				WithMetadata(map[string]any{"username": username})
		}
	} else {
		user, err = b.store.GetByUsername(ctx, username)
		if err != nil {
			if !isNotFound(err) {
				return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve LTI launch user").
					WithMetadata(map[string]any{"username": username})
			}
			b.logger.Warn("LTI launch user does not exist", "username", username)
			b.record(ctx, ActivityEvent{
				EventType: ActivityEventLaunchLoginFailure,
				Username:  username,
				Subject:   launchUserID,
				Metadata:  map[string]any{"reason": ErrLaunchUserNotFound.TextCode},
			})
			user = nil
		}
	}

	if user != nil && b.configurer != nil {
		user, err = b.configurer.ConfigureUser(ctx, user, created)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to configure LTI launch user").
				WithMetadata(map[string]any{"username": username})
		}
	}

	if !b.CanAuthenticate(user) {
		if user != nil {
			b.record(ctx, ActivityEvent{
				EventType: ActivityEventLaunchLoginFailure,
				UserID:    user.ID.String(),
				Username:  user.Username,
				Subject:   launchUserID,
				Metadata:  map[string]any{"reason": ErrUserNotAuthenticable.TextCode},
			})
		}
		return nil, nil
	}

	if user == nil {
		return nil, nil
	}

	if tracker, ok := b.store.(LoginTracker); ok {
		if err := tracker.TrackSuccessfulLogin(ctx, user); err != nil {
			b.logger.Error("failed to track successful login", "error", err)
		}
	}

	if created {
		b.record(ctx, ActivityEvent{
			EventType: ActivityEventLaunchUserCreated,
			UserID:    user.ID.String(),
			Username:  user.Username,
			Subject:   launchUserID,
		})
	}

	b.record(ctx, ActivityEvent{
		EventType: ActivityEventLaunchLoginSuccess,
		UserID:    user.ID.String(),
		Username:  user.Username,
		Subject:   launchUserID,
		Metadata:  map[string]any{"created": created},
	})

	return user, nil
}

func (b *Backend) record(ctx context.Context, event ActivityEvent) {
	recordActivity(ctx, b.activity, b.logger, b.now, event)
}

// UserCanAuthenticate is the default authenticability check: the user
// exists, is not soft deleted and is active.
func UserCanAuthenticate(user *User) bool {
	if user == nil {
		return false
	}
	if user.DeletedAt != nil {
		return false
	}
	status := user.Status
	if status == "" {
		status = UserStatusActive
	}
	return status == UserStatusActive
}

// AllowAllUsers lets every user through, including inactive ones
func AllowAllUsers(*User) bool {
	return true
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrLaunchUserNotFound) {
		return true
	}
	return repository.IsRecordNotFound(err)
}
