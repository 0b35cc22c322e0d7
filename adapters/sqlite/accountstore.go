package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/launchpad/domain/account"
	"github.com/artpar/launchpad/domain/paging"
)

// AccountStore implements ports.AccountStore using SQLite.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new SQLite account store.
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = "id, email, name, role, status, created_at, updated_at"

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (account.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = ?
	`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, ErrNotFound
	}
	return a, err
}

// GetByEmail retrieves an account by email.
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = ?
	`, email)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, ErrNotFound
	}
	return a, err
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a account.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Email, a.Name, string(a.Role), a.Status,
		a.CreatedAt.UnixNano(), a.UpdatedAt.UnixNano())
	return err
}

// Update modifies an existing account.
func (s *AccountStore) Update(ctx context.Context, a account.Account) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET email = ?, name = ?, role = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, a.Email, a.Name, string(a.Role), a.Status, a.UpdatedAt.UnixNano(), a.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an account.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM accounts WHERE id = ?
	`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns accounts, paged, newest first.
func (s *AccountStore) List(ctx context.Context, in paging.Instruction) (paging.Page[account.Account], error) {
	c, err := asCursor(in)
	if err != nil {
		return paging.Page[account.Account]{}, err
	}

	var rows *sql.Rows
	switch {
	case c.Cursor == "":
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+accountColumns+`
			FROM accounts
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		`, c.Limit+1)
	default:
		tok, derr := decodeCursor(c.Cursor)
		if derr != nil {
			return paging.Page[account.Account]{}, derr
		}
		if c.Direction == paging.DirectionPrev {
			rows, err = s.db.QueryContext(ctx, `
				SELECT `+accountColumns+`
				FROM accounts
				WHERE created_at > ? OR (created_at = ? AND id > ?)
				ORDER BY created_at ASC, id ASC
				LIMIT ?
			`, tok.CreatedAt, tok.CreatedAt, tok.ID, c.Limit+1)
		} else {
			rows, err = s.db.QueryContext(ctx, `
				SELECT `+accountColumns+`
				FROM accounts
				WHERE created_at < ? OR (created_at = ? AND id < ?)
				ORDER BY created_at DESC, id DESC
				LIMIT ?
			`, tok.CreatedAt, tok.CreatedAt, tok.ID, c.Limit+1)
		}
	}
	if err != nil {
		return paging.Page[account.Account]{}, err
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return paging.Page[account.Account]{}, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return paging.Page[account.Account]{}, err
	}

	extra := len(accounts) > c.Limit
	if extra {
		accounts = accounts[:c.Limit]
	}
	return buildPage(accounts, c, extra, func(a account.Account) string {
		return encodeCursor(cursorToken{CreatedAt: a.CreatedAt.UnixNano(), ID: a.ID})
	}), nil
}

// Count returns the total account count.
func (s *AccountStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}

func scanAccount(row rowScanner) (account.Account, error) {
	var a account.Account
	var role string
	var createdAt, updatedAt int64

	err := row.Scan(&a.ID, &a.Email, &a.Name, &role, &a.Status, &createdAt, &updatedAt)
	if err != nil {
		return account.Account{}, fmt.Errorf("scan account: %w", err)
	}

	a.Role = account.Role(role)
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	a.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return a, nil
}
