package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teemow/iris/internal/action"
)

// ErrSessionRequired is returned when a SQLite store is opened without a session id.
var ErrSessionRequired = errors.New("session id is required")

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL,
	last_action TEXT
);
CREATE TABLE IF NOT EXISTS turns (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);`

// SessionInfo describes one stored session.
type SessionInfo struct {
	ID        string
	Turns     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SQLiteStore persists conversations in a SQLite database keyed by session id.
// Turns are append-only per session: Save only inserts turns the database
// has not seen yet, unless the conversation was reset.
type SQLiteStore struct {
	db      *sql.DB
	session string
}

// OpenSQLiteDB opens (and creates if needed) the transcript database.
func OpenSQLiteDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// NewSQLiteStore returns a persister for one session in db.
func NewSQLiteStore(db *sql.DB, session string) (*SQLiteStore, error) {
	if session == "" {
		return nil, ErrSessionRequired
	}
	return &SQLiteStore{db: db, session: session}, nil
}

// Session returns the session id.
func (s *SQLiteStore) Session() string {
	return s.session
}

// Load reads the session. An unknown session is an empty conversation.
func (s *SQLiteStore) Load(ctx context.Context) (State, error) {
	state := State{Turns: []Turn{}}

	var lastAction sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT last_action FROM sessions WHERE id = ?", s.session,
	).Scan(&lastAction)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("query failed: %w", err)
	}

	if lastAction.Valid && lastAction.String != "" {
		var rec action.Record
		if err := json.Unmarshal([]byte(lastAction.String), &rec); err != nil {
			return State{}, fmt.Errorf("failed to decode last action: %w", err)
		}
		state.LastAction = &rec
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content FROM turns WHERE session_id = ? ORDER BY seq", s.session)
	if err != nil {
		return State{}, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var turn Turn
		if err := rows.Scan(&turn.Role, &turn.Content); err != nil {
			return State{}, fmt.Errorf("scan failed: %w", err)
		}
		state.Turns = append(state.Turns, turn)
	}
	if err := rows.Err(); err != nil {
		return State{}, fmt.Errorf("rows iteration error: %w", err)
	}

	return state, nil
}

// Save writes the session inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, state State) (err error) {
	var lastAction sql.NullString
	if state.LastAction != nil {
		data, err := json.Marshal(state.LastAction)
		if err != nil {
			return fmt.Errorf("failed to encode last action: %w", err)
		}
		lastAction = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, updated_at, last_action) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at, last_action = excluded.last_action`,
		s.session, now, now, lastAction,
	); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	var stored int
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM turns WHERE session_id = ?", s.session,
	).Scan(&stored); err != nil {
		return fmt.Errorf("failed to count turns: %w", err)
	}

	// A shorter state means the conversation was reset.
	if stored > len(state.Turns) {
		if _, err = tx.ExecContext(ctx, "DELETE FROM turns WHERE session_id = ?", s.session); err != nil {
			return fmt.Errorf("failed to clear turns: %w", err)
		}
		stored = 0
	}

	for i := stored; i < len(state.Turns); i++ {
		turn := state.Turns[i]
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO turns (session_id, seq, role, content) VALUES (?, ?, ?, ?)",
			s.session, i, string(turn.Role), turn.Content,
		); err != nil {
			return fmt.Errorf("failed to insert turn %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSessions returns every stored session, most recently updated first.
func ListSessions(ctx context.Context, db *sql.DB) ([]SessionInfo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT s.id, s.created_at, s.updated_at, COUNT(t.seq)
		FROM sessions s LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.updated_at DESC, s.id`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.UpdatedAt, &info.Turns); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return sessions, nil
}
