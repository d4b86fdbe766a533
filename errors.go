package lti

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeLaunchUserNotFound   = "lti_launch_user_not_found"
	TextCodeMissingLaunch        = "lti_missing_launch"
	TextCodeUserNotAuthenticable = "lti_user_not_authenticable"
	TextCodeInvalidConfig        = "lti_invalid_config"
)

// ErrLaunchUserNotFound marks a launch whose cleaned username has no local
// user while creation is disabled. Its text code is the failure reason
// recorded for that activity. Stores report misses with
// repository.NewRecordNotFound.
var ErrLaunchUserNotFound = errors.New("LTI launch user does not exist", errors.CategoryNotFound).
	WithTextCode(TextCodeLaunchUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrMissingLaunch describes a configure call without LTI launch data. Its
// text code is logged as the reason when the profile sync skips a user.
var ErrMissingLaunch = errors.New("request has no LTI launch data", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingLaunch).
	WithCode(errors.CodeBadRequest)

// ErrUserNotAuthenticable is used as activity metadata when the
// authenticability check rejects a resolved user.
var ErrUserNotAuthenticable = errors.New("user is not allowed to authenticate", errors.CategoryAuth).
	WithTextCode(TextCodeUserNotAuthenticable).
	WithCode(errors.CodeForbidden)

// ErrInvalidConfig wraps configuration validation failures
var ErrInvalidConfig = errors.New("invalid LTI auth configuration", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidConfig).
	WithCode(errors.CodeBadRequest)
