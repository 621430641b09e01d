package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-api/internal/identity"
)

// Account is the credential projection shared by the three audiences. The
// access level is meaningful for staff only; students and guardians carry
// the read-only floor.
type Account struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	AccessLevel  int    `db:"access_level"`
}

// AccountStore resolves callers and rotates credentials across the three
// identity tables. Archived rows cannot authenticate.
type AccountStore struct {
	db *sqlx.DB
}

// NewAccountStore constructs an AccountStore.
func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

func accountTable(userType identity.UserType) (table string, hasLevel bool, err error) {
	switch userType {
	case identity.UserTypeStaff:
		return "staff", true, nil
	case identity.UserTypeStudent:
		return "students", false, nil
	case identity.UserTypeGuardian:
		return "guardians", false, nil
	}
	return "", false, fmt.Errorf("unknown user type %q", userType)
}

func accountColumns(hasLevel bool) string {
	if hasLevel {
		return "id, name, email, password_hash, access_level"
	}
	return "id, name, email, password_hash, 1 AS access_level"
}

// FindByEmail loads the active account for one audience by email.
func (s *AccountStore) FindByEmail(ctx context.Context, userType identity.UserType, email string) (*Account, error) {
	table, hasLevel, err := accountTable(userType)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE email = $1 AND is_archived = FALSE", accountColumns(hasLevel), table)
	var account Account
	if err := s.db.GetContext(ctx, &account, query, email); err != nil {
		return nil, Tag(err)
	}
	return &account, nil
}

// FindByID loads the active account for one audience by id.
func (s *AccountStore) FindByID(ctx context.Context, userType identity.UserType, id string) (*Account, error) {
	table, hasLevel, err := accountTable(userType)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND is_archived = FALSE", accountColumns(hasLevel), table)
	var account Account
	if err := s.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, Tag(err)
	}
	return &account, nil
}

// UpdatePassword rotates the stored hash for an active account.
func (s *AccountStore) UpdatePassword(ctx context.Context, userType identity.UserType, id, hash string) error {
	table, _, err := accountTable(userType)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET password_hash = $2 WHERE id = $1 AND is_archived = FALSE", table)
	res, err := s.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return Tag(err)
	}
	return requireRow(res)
}
