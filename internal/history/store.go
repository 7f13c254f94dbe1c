package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/groupsort/internal/errdef"
)

// fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var ErrClosed = errors.New("history: store closed")

type Session struct {
	ID        string
	Dataset   string
	StartedAt time.Time
	EndedAt   time.Time
}

// Entry is one committed sort.
type Entry struct {
	ID        int64
	SessionID string
	ItemID    string
	Label     string
	Key       string
	OldValue  float64
	NewValue  float64
	At        time.Time
}

// Store is the sort journal. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	now    func() time.Time
	closed bool
}

func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errdef.Wrap(errdef.CodeFilesystem, err, "create history dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "open history database")
	}
	// a single connection keeps :memory: databases and pragmas consistent
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errdef.Wrap(errdef.CodeHistory, err, "connect history database")
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, errdef.Wrap(errdef.CodeHistory, err, "enable foreign keys")
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, errdef.Wrap(errdef.CodeHistory, err, "migrate history database")
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) BeginSession(ctx context.Context, dataset string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Session{}, ErrClosed
	}
	sess := Session{
		ID:        uuid.NewString(),
		Dataset:   dataset,
		StartedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO sessions (id, dataset, started_at) VALUES (?, ?, ?)",
		sess.ID,
		sess.Dataset,
		sess.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Session{}, errdef.Wrap(errdef.CodeHistory, err, "begin session")
	}
	return sess, nil
}

func (s *Store) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	_, err := s.db.ExecContext(
		ctx,
		"UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL",
		s.now().UTC().Format(timeLayout),
		id,
	)
	return errdef.Wrap(errdef.CodeHistory, err, "end session")
}

// Append records entry and returns it with its id and timestamp filled in.
func (s *Store) Append(ctx context.Context, entry Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Entry{}, ErrClosed
	}
	if entry.At.IsZero() {
		entry.At = s.now()
	}
	entry.At = entry.At.UTC()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sorts (session_id, item_id, label, key_name, old_value, new_value, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.ItemID,
		entry.Label,
		entry.Key,
		entry.OldValue,
		entry.NewValue,
		entry.At.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, errdef.Wrap(errdef.CodeHistory, err, "append sort")
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return Entry{}, errdef.Wrap(errdef.CodeHistory, err, "read sort id")
	}
	return entry, nil
}

// Entries returns the sorts of a session, newest first. A non-positive
// limit returns all of them.
func (s *Store) Entries(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, session_id, item_id, label, key_name, old_value, new_value, at
		FROM sorts WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID,
		limit,
	)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "query sorts")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.ItemID,
			&e.Label,
			&e.Key,
			&e.OldValue,
			&e.NewValue,
			&at,
		); err != nil {
			return nil, errdef.Wrap(errdef.CodeHistory, err, "scan sort")
		}
		if e.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, errdef.Wrap(errdef.CodeParse, err, "parse sort time")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "iterate sorts")
	}
	return out, nil
}

// Sessions returns recent sessions, newest first.
func (s *Store) Sessions(ctx context.Context, limit int) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, dataset, started_at, COALESCE(ended_at, '')
		FROM sessions ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "query sessions")
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess         Session
			started, end string
		)
		if err := rows.Scan(&sess.ID, &sess.Dataset, &started, &end); err != nil {
			return nil, errdef.Wrap(errdef.CodeHistory, err, "scan session")
		}
		if sess.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, errdef.Wrap(errdef.CodeParse, err, "parse session start")
		}
		if end != "" {
			if sess.EndedAt, err = time.Parse(timeLayout, end); err != nil {
				return nil, errdef.Wrap(errdef.CodeParse, err, "parse session end")
			}
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "iterate sessions")
	}
	return out, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
