package lti

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LaunchUsers is the bun backed LaunchUserStore
type LaunchUsers interface {
	LaunchUserStore
	FindBySubjectTx(ctx context.Context, tx bun.IDB, issuer, subject string) (*LaunchUser, error)
	FindByAuthUserID(ctx context.Context, userID uuid.UUID) ([]*LaunchUser, error)
	SaveTx(ctx context.Context, tx bun.IDB, user *LaunchUser) (*LaunchUser, error)
}

type launchUsers struct {
	db  *bun.DB
	now func() time.Time
}

var _ LaunchUsers = (*launchUsers)(nil)

// NewLaunchUsersRepository creates a new repository.
func NewLaunchUsersRepository(db *bun.DB) LaunchUsers {
	return &launchUsers{db: db, now: time.Now}
}

func (r *launchUsers) FindBySubject(ctx context.Context, issuer, subject string) (*LaunchUser, error) {
	return r.FindBySubjectTx(ctx, r.db, issuer, subject)
}

func (r *launchUsers) FindBySubjectTx(ctx context.Context, tx bun.IDB, issuer, subject string) (*LaunchUser, error) {
	record := &LaunchUser{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.issuer = ? AND ?TableAlias.subject = ?", issuer, subject).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"issuer":  issuer,
					"subject": subject,
				})
		}
		return nil, err
	}
	return record, nil
}

func (r *launchUsers) FindByAuthUserID(ctx context.Context, userID uuid.UUID) ([]*LaunchUser, error) {
	var records []*LaunchUser
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.auth_user_id = ?", userID).
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, err
	}
	if records == nil {
		records = []*LaunchUser{}
	}
	return records, nil
}

func (r *launchUsers) Save(ctx context.Context, user *LaunchUser) (*LaunchUser, error) {
	return r.SaveTx(ctx, r.db, user)
}

// SaveTx upserts on (issuer, subject). The returned record carries the
// stored id, which differs from user.ID when the row already existed.
func (r *launchUsers) SaveTx(ctx context.Context, tx bun.IDB, user *LaunchUser) (*LaunchUser, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.now()
	user.UpdatedAt = &now

	_, err := tx.NewInsert().
		Model(user).
		On("CONFLICT (issuer, subject) DO UPDATE").
		Set("given_name = EXCLUDED.given_name").
		Set("family_name = EXCLUDED.family_name").
		Set("email = EXCLUDED.email").
		Set("auth_user_id = EXCLUDED.auth_user_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return r.FindBySubjectTx(ctx, tx, user.Issuer, user.Subject)
}
