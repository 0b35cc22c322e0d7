package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/launchpad/domain/apikey"
	"github.com/artpar/launchpad/domain/paging"
)

// KeyStore implements ports.KeyStore using SQLite.
type KeyStore struct {
	db *DB
}

// NewKeyStore creates a new SQLite key store.
func NewKeyStore(db *DB) *KeyStore {
	return &KeyStore{db: db}
}

const keyColumns = "id, user_id, hash, prefix, name, expires_at, revoked_at, created_at, last_used"

// GetByPrefix retrieves keys matching a lookup prefix.
func (s *KeyStore) GetByPrefix(ctx context.Context, prefix string) ([]apikey.Key, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+keyColumns+`
		FROM api_keys
		WHERE prefix = ?
	`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []apikey.Key
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetByID retrieves a key by ID.
func (s *KeyStore) GetByID(ctx context.Context, id string) (apikey.Key, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+keyColumns+`
		FROM api_keys
		WHERE id = ?
	`, id)
	k, err := scanKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return apikey.Key{}, ErrNotFound
	}
	return k, err
}

// Create stores a new key.
func (s *KeyStore) Create(ctx context.Context, k apikey.Key) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_keys (`+keyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, k.ID, k.UserID, k.Hash, k.Prefix, k.Name,
		nanosOrNil(k.ExpiresAt), nanosOrNil(k.RevokedAt), k.CreatedAt.UnixNano(), nanosOrNil(k.LastUsed))
	return err
}

// DeleteByUser removes the given keys belonging to a user.
func (s *KeyStore) DeleteByUser(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM api_keys
		WHERE user_id = ? AND id IN (`+placeholders+`)
	`, args...)
	return err
}

// ListByUser returns a user's keys, paged, newest first.
func (s *KeyStore) ListByUser(ctx context.Context, userID string, in paging.Instruction) (paging.Page[apikey.Key], error) {
	c, err := asCursor(in)
	if err != nil {
		return paging.Page[apikey.Key]{}, err
	}

	var rows *sql.Rows
	switch {
	case c.Cursor == "":
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+keyColumns+`
			FROM api_keys
			WHERE user_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		`, userID, c.Limit+1)
	default:
		tok, derr := decodeCursor(c.Cursor)
		if derr != nil {
			return paging.Page[apikey.Key]{}, derr
		}
		if c.Direction == paging.DirectionPrev {
			rows, err = s.db.QueryContext(ctx, `
				SELECT `+keyColumns+`
				FROM api_keys
				WHERE user_id = ? AND (created_at > ? OR (created_at = ? AND id > ?))
				ORDER BY created_at ASC, id ASC
				LIMIT ?
			`, userID, tok.CreatedAt, tok.CreatedAt, tok.ID, c.Limit+1)
		} else {
			rows, err = s.db.QueryContext(ctx, `
				SELECT `+keyColumns+`
				FROM api_keys
				WHERE user_id = ? AND (created_at < ? OR (created_at = ? AND id < ?))
				ORDER BY created_at DESC, id DESC
				LIMIT ?
			`, userID, tok.CreatedAt, tok.CreatedAt, tok.ID, c.Limit+1)
		}
	}
	if err != nil {
		return paging.Page[apikey.Key]{}, err
	}
	defer rows.Close()

	var keys []apikey.Key
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return paging.Page[apikey.Key]{}, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return paging.Page[apikey.Key]{}, err
	}

	extra := len(keys) > c.Limit
	if extra {
		keys = keys[:c.Limit]
	}
	return buildPage(keys, c, extra, func(k apikey.Key) string {
		return encodeCursor(cursorToken{CreatedAt: k.CreatedAt.UnixNano(), ID: k.ID})
	}), nil
}

// UpdateLastUsed updates the last used timestamp.
func (s *KeyStore) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE api_keys SET last_used = ? WHERE id = ?
	`, at.UnixNano(), id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKey(row rowScanner) (apikey.Key, error) {
	var k apikey.Key
	var createdAt int64
	var expiresAt, revokedAt, lastUsed sql.NullInt64

	err := row.Scan(&k.ID, &k.UserID, &k.Hash, &k.Prefix, &k.Name,
		&expiresAt, &revokedAt, &createdAt, &lastUsed)
	if err != nil {
		return apikey.Key{}, fmt.Errorf("scan key: %w", err)
	}

	k.CreatedAt = time.Unix(0, createdAt).UTC()
	k.ExpiresAt = timeOrNil(expiresAt)
	k.RevokedAt = timeOrNil(revokedAt)
	k.LastUsed = timeOrNil(lastUsed)
	return k, nil
}

func nanosOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

func timeOrNil(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(0, n.Int64).UTC()
	return &t
}
