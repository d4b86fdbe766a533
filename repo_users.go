package lti

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the bun backed user store
type Users interface {
	repository.Repository[*User]
	UserStore

	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error)
	GetOrCreateByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, bool, error)
	SaveProfileTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	repository.Repository[*User]
	db          *bun.DB
	defaultRole UserRole
	now         func() time.Time
}

var (
	_ Users     = (*users)(nil)
	_ UserStore = (*users)(nil)
)

type UsersOption func(*users)

// WithUsersDefaultRole sets the role assigned to users created from a launch
func WithUsersDefaultRole(role UserRole) UsersOption {
	return func(u *users) {
		if parsed, ok := ParseRole(role); ok {
			u.defaultRole = parsed
		}
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	repoUsers := &users{
		Repository:  repo,
		db:          db,
		defaultRole: RoleGuest,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoUsers)
		}
	}

	return repoUsers
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *users) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"username": username,
				})
		}
		return nil, err
	}
	return record, nil
}

func (a *users) GetOrCreateByUsername(ctx context.Context, username string) (*User, bool, error) {
	return a.GetOrCreateByUsernameTx(ctx, a.db, username)
}

// GetOrCreateByUsernameTx relies on the unique username index: the insert is
// a no-op when the row exists, so concurrent callers converge on one record
// and only the caller whose insert landed sees created == true.
func (a *users) GetOrCreateByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, bool, error) {
	if username == "" {
		return nil, false, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"username": username,
			})
	}

	record := &User{Username: username}
	a.prepareDefaults(record)

	res, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (username) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}

	created := false
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		created = true
	}

	user := &User{}
	err = tx.NewSelect().
		Model(user).
		WhereAllWithDeleted().
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, false, err
	}

	return user, created, nil
}

func (a *users) SaveProfile(ctx context.Context, user *User) (*User, error) {
	return a.SaveProfileTx(ctx, a.db, user)
}

// SaveProfileTx persists the profile columns the launch sync owns.
func (a *users) SaveProfileTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	now := a.now()
	user.UpdatedAt = &now

	res, err := tx.NewUpdate().
		Model(user).
		Column("first_name", "last_name", "email", "metadata", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": user.ID.String(),
			})
	}

	return user, nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	loggedInAt := a.now()
	_, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("loggedin_at = ?", loggedInAt).
		Where("?TableAlias.id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	user.LoggedInAt = &loggedInAt
	return nil
}

func (a *users) prepareDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = a.defaultRole
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
