// Package repository persists decoded events and recording sessions so that
// scoring moments can be located inside recorded and streamed video after
// the fact.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ringcast/ringcast/internal/domain/model"
)

// EventRecord is a persisted event row.
type EventRecord struct {
	ID            string
	Kind          model.Kind
	Category      model.Category
	Raw           string
	Payload       json.RawMessage
	CapturedAt    time.Time
	MatchNumber   string
	TournamentDay string
	RecTimestamp  *float64
	StrTimestamp  *float64
	VideoPath     *string
	SeekOffset    *float64
}

// VideoRef ties a stored session to the video material it produced.
type VideoRef struct {
	SessionID  string
	Connection string
	Kind       model.SessionKind
	Number     int
	Start      time.Time
	End        *time.Time
	Directory  string
	Template   string
}

// Store provides read/write access to the persisted match history.
type Store interface {
	// SaveEvent persists a decoded event under the given match and day.
	SaveEvent(ctx context.Context, ev model.Event, matchNumber, day string) error

	// AttachVideo links an event to a saved replay file and seek offset.
	AttachVideo(ctx context.Context, eventID, path string, seekOffset float64) error

	// MatchEvents returns a match's events in capture order.
	MatchEvents(ctx context.Context, day, matchNumber string) ([]EventRecord, error)

	// SaveSession inserts or updates a recording session.
	SaveSession(ctx context.Context, session model.RecordingSession) error

	// DayVideos returns the day's sessions with their start times, in
	// session-number order.
	DayVideos(ctx context.Context, day string, kind model.SessionKind) ([]VideoRef, error)

	// Close releases the underlying database.
	Close() error
}
