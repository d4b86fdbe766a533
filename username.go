package lti

import "strings"

// IdentityUsername returns the launch user id unchanged
func IdentityUsername(launchUserID string) string {
	return launchUserID
}

// TrimSpace strips surrounding whitespace
func TrimSpace(launchUserID string) string {
	return strings.TrimSpace(launchUserID)
}

// Lowercase folds the username to lower case
func Lowercase(launchUserID string) string {
	return strings.ToLower(launchUserID)
}

// StripPrefix removes a fixed prefix, e.g. a platform namespace
func StripPrefix(prefix string) UsernameCleaner {
	return func(launchUserID string) string {
		if prefix == "" {
			return launchUserID
		}
		return strings.TrimPrefix(launchUserID, prefix)
	}
}

// ChainCleaners applies cleaners left to right
func ChainCleaners(cleaners ...UsernameCleaner) UsernameCleaner {
	return func(launchUserID string) string {
		out := launchUserID
		for _, clean := range cleaners {
			if clean == nil {
				continue
			}
			out = clean(out)
		}
		return out
	}
}
