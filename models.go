package lti

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleGuest is an guest role (ie. view)
	RoleGuest UserRole = "guest"
	// RoleMember us a member (i.e. view, edit)
	RoleMember UserRole = "member"
	// RoleAdmin is an admin role (i.e. view, edit, create)
	RoleAdmin UserRole = "admin"
	// RoleOwner is an admin role (i.e. view, edit, create, delete)
	RoleOwner UserRole = "owner"
)

// ParseRole normalizes a role string, returning false for unknown roles
func ParseRole(s string) (UserRole, bool) {
	switch s {
	case RoleGuest, RoleMember, RoleAdmin, RoleOwner:
		return s, true
	default:
		return "", false
	}
}

// UserStatus is the lifecycle status of a local user
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDisabled  UserStatus = "disabled"
	UserStatusArchived  UserStatus = "archived"
)

// User is the local user record an LTI launch resolves to
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole       `bun:"user_role,notnull" json:"user_role,omitempty"`
	Status        UserStatus     `bun:"status,notnull" json:"status,omitempty"`
	FirstName     string         `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string         `bun:"last_name,notnull" json:"last_name,omitempty"`
	Username      string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string         `bun:"email,notnull" json:"email,omitempty"`
	Metadata      map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	LoggedInAt    *time.Time     `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// EnsureStatus defaults an empty status to active
func (u *User) EnsureStatus() {
	if u == nil {
		return
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

func (u *User) String() string {
	if u == nil {
		return "<nil>"
	}
	return u.Username
}

// LaunchUser is the LTI side of an identity: the platform's user as asserted
// by a launch, plus the back-reference to the local user it authenticated as.
type LaunchUser struct {
	bun.BaseModel `bun:"table:lti_users,alias:ltu"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Issuer        string     `bun:"issuer,notnull" json:"issuer,omitempty"`
	Subject       string     `bun:"subject,notnull" json:"subject,omitempty"`
	GivenName     string     `bun:"given_name" json:"given_name,omitempty"`
	FamilyName    string     `bun:"family_name" json:"family_name,omitempty"`
	Email         string     `bun:"email" json:"email,omitempty"`
	AuthUserID    *uuid.UUID `bun:"auth_user_id,type:uuid,nullzero" json:"auth_user_id,omitempty"`
	AuthUser      *User      `bun:"rel:belongs-to,join:auth_user_id=id" json:"auth_user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Associate links the launch user to a local user
func (l *LaunchUser) Associate(user *User) {
	if l == nil || user == nil {
		return
	}
	id := user.ID
	l.AuthUserID = &id
	l.AuthUser = user
}
