// Package converter turns standard MIDI files into monophonic MML voice scripts
package converter

import "errors"

// Canonical tick grid. Incoming files are rescaled so a quarter note is
// always TPB ticks, and note boundaries snap to GridSize ticks.
const (
	TPB      = 384
	GridSize = 24
)

// Mode selects the voice partitioning strategy
type Mode string

const (
	// ModeNormal splits notes purely by simultaneity
	ModeNormal Mode = "normal"
	// ModeInstrument groups notes by instrument first, then by simultaneity
	ModeInstrument Mode = "instrument"
)

// Options controls a single conversion
type Options struct {
	Mode      Mode // partitioning strategy
	CharLimit int  // per-voice character cap
	Compress  bool // favor plain note lengths over dotted/tied precision
}

// DefaultCharLimit is applied when Options.CharLimit is zero or negative
const DefaultCharLimit = 1200

// DefaultOptions returns the options used when the caller specifies nothing
func DefaultOptions() Options {
	return Options{Mode: ModeNormal, CharLimit: DefaultCharLimit}
}

// Fatal parse errors. The orchestrator flattens these into the result's
// Error string; callers inside the module can still errors.Is against them.
var (
	ErrMalformedHeader   = errors.New("malformed MIDI header")
	ErrTruncatedTrack    = errors.New("track chunk runs past end of file")
	ErrUnsupportedFormat = errors.New("unsupported MIDI format")
)

// EventKind identifies a decoded MIDI event
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventProgramChange
	EventTempo
)

// RawEvent is one decoded MIDI event with its absolute tick offset.
// Only the fields relevant to its kind are populated.
type RawEvent struct {
	Kind    EventKind
	Track   int
	Channel uint8
	Tick    uint32 // absolute, in the file's own division

	Pitch            uint8  // note events
	Velocity         uint8  // note-on
	Program          uint8  // program change
	MicrosPerQuarter uint32 // tempo meta
}

// TempoChange is one breakpoint of the tempo map
type TempoChange struct {
	Tick             uint32
	MicrosPerQuarter uint32
}

// TempoMap is the merged, tick-ordered tempo timeline of a file.
// It always starts with an entry at tick 0.
type TempoMap []TempoChange

// Note is a resolved musical event on the canonical grid
type Note struct {
	Pitch      uint8
	Velocity   uint8
	Channel    uint8
	Start      uint32 // canonical ticks, grid aligned
	End        uint32 // exclusive, always > Start
	Instrument string // GM name of the governing program change
}

// Ticks returns the note length in canonical ticks
func (n Note) Ticks() uint32 {
	return n.End - n.Start
}

// Overlaps reports whether the [Start,End) intervals of two notes intersect
func (n Note) Overlaps(o Note) bool {
	return n.Start < o.End && o.Start < n.End
}

// Voice is a named, ordered, non-overlapping note sequence destined
// for one MML string
type Voice struct {
	Name  string
	Notes []Note
}

// VoiceResult is the output-facing view of one generated voice
type VoiceResult struct {
	Name      string  `json:"name"`
	Content   string  `json:"content"`
	CharCount int     `json:"char_count"`
	NoteCount int     `json:"note_count"`
	Duration  float64 `json:"duration"` // seconds
}

// ConversionResult is the full outcome of one conversion.
// Error is populated iff Success is false.
type ConversionResult struct {
	Success    bool          `json:"success"`
	Voices     []VoiceResult `json:"voices"`
	Error      string        `json:"error,omitempty"`
	BPM        int           `json:"bpm"`
	TotalNotes int           `json:"total_notes"`
}
