package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/metrics"
	"github.com/ringcast/ringcast/pkg/retry"
)

// Default store configuration constants.
const (
	defaultMaxOpenConns = 4
	timeLayout          = time.RFC3339Nano
)

// SQLiteStore implements Store on a WAL-mode SQLite database.
type SQLiteStore struct {
	db           *sql.DB
	maxOpenConns int
	retryCfg     retry.Config
}

// New opens (or creates) the database at path and bootstraps the schema.
func New(path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		maxOpenConns: defaultMaxOpenConns,
		retryCfg: retry.Config{
			MaxAttempts:  4,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     500 * time.Millisecond,
			Multiplier:   2.0,
			AddJitter:    true,
		},
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)

	s.db = db
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id             TEXT PRIMARY KEY,
		kind           INTEGER NOT NULL,
		category       INTEGER NOT NULL,
		raw            TEXT NOT NULL,
		payload        TEXT,
		captured_at    TEXT NOT NULL,
		match_number   TEXT NOT NULL,
		tournament_day TEXT NOT NULL,
		rec_ts         REAL,
		str_ts         REAL,
		video_path     TEXT,
		seek_offset    REAL
	);

	CREATE INDEX IF NOT EXISTS idx_events_match ON events(tournament_day, match_number, captured_at);

	CREATE TABLE IF NOT EXISTS sessions (
		id                TEXT PRIMARY KEY,
		connection        TEXT NOT NULL,
		kind              INTEGER NOT NULL,
		started_at        TEXT NOT NULL,
		ended_at          TEXT,
		number            INTEGER NOT NULL,
		cumulative_offset REAL NOT NULL,
		directory         TEXT NOT NULL,
		template          TEXT NOT NULL,
		tournament_day    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_day ON sessions(tournament_day, kind, number);
	`
	_, err := s.db.Exec(schema)
	return err
}

// retryWrite runs fn with backoff on transient SQLite contention errors.
// Non-transient failures abort immediately.
func (s *SQLiteStore) retryWrite(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, s.retryCfg, func() error {
		err := fn()
		if err != nil && !isTransientErr(err) {
			return retry.NonRetryable(err)
		}
		return err
	})
}

// isTransientErr matches the contention errors WAL-mode SQLite produces
// under concurrent access (BUSY, LOCKED, IOERR_SHORT_READ).
func isTransientErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"SQLITE_BUSY",
		"SQLITE_LOCKED",
		"IOERR_SHORT_READ",
		"database is locked",
		"database table is locked",
		"(5)",
		"(6)",
		"(522)",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// SaveEvent persists a decoded event under the given match and day.
func (s *SQLiteStore) SaveEvent(ctx context.Context, ev model.Event, matchNumber, day string) error {
	start := time.Now()
	defer func() {
		metrics.RecordPersistLatency(time.Since(start).Seconds())
	}()

	var payload any
	if ev.Payload != nil {
		raw, err := json.Marshal(ev.Payload)
		if err != nil {
			metrics.RecordPersistError()
			return fmt.Errorf("encoding payload: %w", err)
		}
		payload = string(raw)
	}

	err := s.retryWrite(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO events (id, kind, category, raw, payload, captured_at,
			                     match_number, tournament_day, rec_ts, str_ts)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			     rec_ts = excluded.rec_ts,
			     str_ts = excluded.str_ts`,
			ev.ID, int(ev.Kind), int(ev.Category), ev.Raw, payload,
			ev.CapturedAt.UTC().Format(timeLayout),
			matchNumber, day, ev.RecTimestamp, ev.StrTimestamp,
		)
		return err
	})
	if err != nil {
		metrics.RecordPersistError()
		return err
	}
	metrics.RecordEventPersisted()
	return nil
}

// AttachVideo links an event to a saved replay file and seek offset.
func (s *SQLiteStore) AttachVideo(ctx context.Context, eventID, path string, seekOffset float64) error {
	err := s.retryWrite(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE events SET video_path = ?, seek_offset = ? WHERE id = ?`,
			path, seekOffset, eventID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return retry.NonRetryable(ErrNotFound)
		}
		return nil
	})
	if err != nil {
		metrics.RecordPersistError()
	}
	return err
}

// MatchEvents returns a match's events in capture order.
func (s *SQLiteStore) MatchEvents(ctx context.Context, day, matchNumber string) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, category, raw, payload, captured_at,
		        match_number, tournament_day, rec_ts, str_ts, video_path, seek_offset
		 FROM events
		 WHERE tournament_day = ? AND match_number = ?
		 ORDER BY captured_at`,
		day, matchNumber,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var (
			rec      EventRecord
			kind     int
			category int
			payload  sql.NullString
			captured string
		)
		if err := rows.Scan(&rec.ID, &kind, &category, &rec.Raw, &payload, &captured,
			&rec.MatchNumber, &rec.TournamentDay, &rec.RecTimestamp, &rec.StrTimestamp,
			&rec.VideoPath, &rec.SeekOffset); err != nil {
			return nil, err
		}
		rec.Kind = model.Kind(kind)
		rec.Category = model.Category(category)
		if payload.Valid {
			rec.Payload = json.RawMessage(payload.String)
		}
		rec.CapturedAt, err = time.Parse(timeLayout, captured)
		if err != nil {
			return nil, fmt.Errorf("parsing captured_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveSession inserts or updates a recording session.
func (s *SQLiteStore) SaveSession(ctx context.Context, session model.RecordingSession) error {
	var end any
	if session.End != nil {
		end = session.End.UTC().Format(timeLayout)
	}

	err := s.retryWrite(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO sessions (id, connection, kind, started_at, ended_at, number,
			                       cumulative_offset, directory, template, tournament_day)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			     ended_at = excluded.ended_at,
			     cumulative_offset = excluded.cumulative_offset,
			     directory = excluded.directory,
			     template = excluded.template`,
			session.ID, session.Connection, int(session.Kind),
			session.Start.UTC().Format(timeLayout), end,
			session.Number, session.CumulativeOffset,
			session.Directory, session.Template, session.TournamentDay,
		)
		return err
	})
	if err != nil {
		metrics.RecordPersistError()
	}
	return err
}

// DayVideos returns the day's sessions with their start times, in
// session-number order.
func (s *SQLiteStore) DayVideos(ctx context.Context, day string, kind model.SessionKind) ([]VideoRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, connection, kind, started_at, ended_at, number, directory, template
		 FROM sessions
		 WHERE tournament_day = ? AND kind = ?
		 ORDER BY number`,
		day, int(kind),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []VideoRef
	for rows.Next() {
		var (
			ref     VideoRef
			k       int
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&ref.SessionID, &ref.Connection, &k, &started, &ended,
			&ref.Number, &ref.Directory, &ref.Template); err != nil {
			return nil, err
		}
		ref.Kind = model.SessionKind(k)
		ref.Start, err = time.Parse(timeLayout, started)
		if err != nil {
			return nil, fmt.Errorf("parsing start: %w", err)
		}
		if ended.Valid {
			t, err := time.Parse(timeLayout, ended.String)
			if err != nil {
				return nil, fmt.Errorf("parsing end: %w", err)
			}
			ref.End = &t
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
