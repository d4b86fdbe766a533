package lti

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// MiddlewareConfig configures the launch authentication middleware
type MiddlewareConfig struct {
	// LaunchKey is the Locals key the launch is read from when it is not
	// attached to the request context. Defaults to DefaultLaunchKey.
	LaunchKey string
	// UserKey, when set, also stores the authenticated user in Locals.
	UserKey      string
	ErrorHandler func(ctx router.Context, err error) error
	Logger       Logger
}

// Middleware authenticates requests that carry an LTI launch. Requests
// without a launch, and launches that do not authenticate, continue to the
// next handler without a user.
func Middleware(backend *Backend, cfg MiddlewareConfig) router.MiddlewareFunc {
	if cfg.LaunchKey == "" {
		cfg.LaunchKey = DefaultLaunchKey
	}

	_, logger := ResolveLogger("lti.middleware", backend.provider, cfg.Logger)

	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(ctx router.Context, err error) error {
			return err
		}
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			c := ctx.Context()

			launch, ok := LaunchFromContext(c)
			if !ok {
				launch, ok = LaunchFromRouterContext(ctx, cfg.LaunchKey)
				if ok {
					c = WithLaunch(c, launch)
				}
			}

			if !ok || launch.UserID() == "" {
				return next(ctx)
			}

			user, err := backend.Authenticate(c, launch.UserID())
			if err != nil {
				logger.Error("LTI launch authentication failed", "error", err)
				var richErr *errors.Error
				if !errors.As(err, &richErr) {
					richErr = errors.Wrap(err, errors.CategoryAuth, "LTI launch authentication failed")
				}
				return errorHandler(ctx, richErr.WithCode(errors.CodeUnauthorized))
			}

			if user == nil {
				logger.Debug("LTI launch did not authenticate", "subject", launch.UserID())
				return next(ctx)
			}

			ctx.SetContext(WithUser(c, user))
			if cfg.UserKey != "" {
				ctx.Locals(cfg.UserKey, user)
			}

			return next(ctx)
		}
	}
}
