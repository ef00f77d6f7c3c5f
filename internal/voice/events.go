package voice

import "time"

type EventType int

const (
	TrackStart EventType = iota
	TrackEnd
	TrackStuck
	TrackException
	QueueEnd
)

func (t EventType) String() string {
	switch t {
	case TrackStart:
		return "track_start"
	case TrackEnd:
		return "track_end"
	case TrackStuck:
		return "track_stuck"
	case TrackException:
		return "track_exception"
	case QueueEnd:
		return "queue_end"
	}
	return "unknown"
}

// EndReason says why a track stopped playing.
type EndReason string

const (
	ReasonFinished   EndReason = "finished"
	ReasonSkipped    EndReason = "skipped"
	ReasonStopped    EndReason = "stopped"
	ReasonLoadFailed EndReason = "load_failed"
	ReasonStuck      EndReason = "stuck"
)

// Event is a player notification. Track is nil for QueueEnd.
type Event struct {
	Type   EventType
	Track  *Track
	Reason EndReason
	Err    error
	At     time.Time
}

// Track is one queue entry. IDs are unique per Load, so the same URI
// loaded twice yields two distinct tracks.
type Track struct {
	ID       string
	URI      string
	Title    string
	Duration time.Duration
	Speech   bool
}
