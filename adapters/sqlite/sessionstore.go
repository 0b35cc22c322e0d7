package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/domain/session"
)

// SessionStore implements ports.SessionStore using SQLite.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new SQLite session store.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

const sessionColumns = "id, user_id, signature, user_agent, issued_at, expires_at, last_seen"

// GetBySignature retrieves a session by its signature token.
func (s *SessionStore) GetBySignature(ctx context.Context, signature string) (session.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE signature = ?
	`, signature)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Session{}, ErrNotFound
	}
	return sess, err
}

// Create stores a new session.
func (s *SessionStore) Create(ctx context.Context, sess session.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.UserID, sess.Signature, sess.UserAgent,
		sess.IssuedAt.UnixNano(), sess.ExpiresAt.UnixNano(), nanosOrNil(sess.LastSeen))
	return err
}

// DeleteByUser removes the given sessions belonging to a user.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string, ids []string) error {
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
		DELETE FROM sessions
		WHERE user_id = ? AND id IN (`+placeholders+`)
	`, args...)
	return err
}

// ListByUser returns a user's sessions, paged, newest first.
func (s *SessionStore) ListByUser(ctx context.Context, userID string, in paging.Instruction) (paging.Page[session.Session], error) {
	c, err := asCursor(in)
	if err != nil {
		return paging.Page[session.Session]{}, err
	}

	var rows *sql.Rows
	switch {
	case c.Cursor == "":
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+sessionColumns+`
			FROM sessions
			WHERE user_id = ?
			ORDER BY issued_at DESC, id DESC
			LIMIT ?
		`, userID, c.Limit+1)
	default:
		tok, derr := decodeCursor(c.Cursor)
		if derr != nil {
			return paging.Page[session.Session]{}, derr
		}
		if c.Direction == paging.DirectionPrev {
			rows, err = s.db.QueryContext(ctx, `
				SELECT `+sessionColumns+`
				FROM sessions
				WHERE user_id = ? AND (issued_at > ? OR (issued_at = ? AND id > ?))
				ORDER BY issued_at ASC, id ASC
				LIMIT ?
			`, userID, tok.CreatedAt, tok.CreatedAt, tok.ID, c.Limit+1)
		} else {
			rows, err = s.db.QueryContext(ctx, `
				SELECT `+sessionColumns+`
				FROM sessions
				WHERE user_id = ? AND (issued_at < ? OR (issued_at = ? AND id < ?))
				ORDER BY issued_at DESC, id DESC
				LIMIT ?
			`, userID, tok.CreatedAt, tok.CreatedAt, tok.ID, c.Limit+1)
		}
	}
	if err != nil {
		return paging.Page[session.Session]{}, err
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return paging.Page[session.Session]{}, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return paging.Page[session.Session]{}, err
	}

	extra := len(sessions) > c.Limit
	if extra {
		sessions = sessions[:c.Limit]
	}
	return buildPage(sessions, c, extra, func(sess session.Session) string {
		return encodeCursor(cursorToken{CreatedAt: sess.IssuedAt.UnixNano(), ID: sess.ID})
	}), nil
}

// Touch updates the last seen timestamp.
func (s *SessionStore) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET last_seen = ? WHERE id = ?
	`, at.UnixNano(), id)
	return err
}

func scanSession(row rowScanner) (session.Session, error) {
	var sess session.Session
	var issuedAt, expiresAt int64
	var lastSeen sql.NullInt64

	err := row.Scan(&sess.ID, &sess.UserID, &sess.Signature, &sess.UserAgent,
		&issuedAt, &expiresAt, &lastSeen)
	if err != nil {
		return session.Session{}, fmt.Errorf("scan session: %w", err)
	}

	sess.IssuedAt = time.Unix(0, issuedAt).UTC()
	sess.ExpiresAt = time.Unix(0, expiresAt).UTC()
	sess.LastSeen = timeOrNil(lastSeen)
	return sess, nil
}
