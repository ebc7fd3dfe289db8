package converter

import "fmt"

// Dialect abstracts the target client's MML token syntax. The generation
// algorithm is fixed; only the literal spelling of directives and notes is
// dialect-specific, so a different game client can be supported by adding
// another implementation.
type Dialect interface {
	Name() string
	// NoteName maps a MIDI pitch to its letter (with accidental) and octave
	NoteName(pitch uint8) (string, int)
	Tempo(bpm int) string
	Volume() string
	Octave(octave int) string
	DefaultLength(length string) string
	// Note renders a pitched token; length is empty when the running
	// default length applies
	Note(name, length string) string
	Rest(length string) string
	Tie() string
}

// noteNames indexed by pitch class; sharps use the "+" accidental
var noteNames = [12]string{"C", "C+", "D", "D+", "E", "F", "F+", "G", "G+", "A", "A+", "B"}

// StandardDialect is the grammar understood by the game client:
// T<bpm> V15 O<octave> L<length> note letters with +, R rests, & ties.
type StandardDialect struct{}

// NewStandardDialect creates the default dialect handler
func NewStandardDialect() *StandardDialect {
	return &StandardDialect{}
}

// Name returns the dialect name
func (d *StandardDialect) Name() string {
	return "standard"
}

// NoteName maps a MIDI pitch to note letter and octave (middle C = O4)
func (d *StandardDialect) NoteName(pitch uint8) (string, int) {
	return noteNames[pitch%12], int(pitch)/12 - 1
}

// Tempo renders the tempo directive
func (d *StandardDialect) Tempo(bpm int) string {
	return fmt.Sprintf("T%d", bpm)
}

// Volume renders the fixed volume directive
func (d *StandardDialect) Volume() string {
	return "V15"
}

// Octave renders an absolute octave directive
func (d *StandardDialect) Octave(octave int) string {
	return fmt.Sprintf("O%d", octave)
}

// DefaultLength renders the default note length directive
func (d *StandardDialect) DefaultLength(length string) string {
	return "L" + length
}

// Note renders a pitched token
func (d *StandardDialect) Note(name, length string) string {
	return name + length
}

// Rest renders a rest token
func (d *StandardDialect) Rest(length string) string {
	return "R" + length
}

// Tie renders the tie connector between two tokens of one held note
func (d *StandardDialect) Tie() string {
	return "&"
}
