// Package lti authenticates users from an LTI (Learning Tools
// Interoperability) launch. The launch is validated upstream; this package
// takes the trusted launch user id, maps it onto a local User and keeps the
// user's profile in sync with the launch claims.
//
// Authentication:
//   - Backend.Authenticate cleans the launch user id into a username and
//     either gets-or-creates the user (the default) or only looks it up.
//     Unknown users with creation disabled log a warning and do not
//     authenticate.
//   - Every resolved user goes through a UserConfigurer with a created flag.
//     The default ProfileSync copies non-empty given name, family name and
//     email from the launch and links the LaunchUser back to the User.
//   - The result is gated by an AuthenticabilityCheck. UserCanAuthenticate
//     requires an active, non deleted user; NewAllowAllUsersBackend skips the
//     check entirely.
//
// Storage:
//   - Users and LaunchUsers are bun repositories. Get-or-create relies on the
//     unique username index so concurrent launches for a new id converge on
//     a single record.
//
// Activity sinks:
//   - ActivitySink receives login success/failure and user creation events.
//     Sinks run best-effort (errors are logged).
package lti
