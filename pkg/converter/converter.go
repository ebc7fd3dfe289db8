package converter

import (
	"fmt"
	"os"
)

// Converter runs the MIDI to MML pipeline with a fixed dialect.
// The zero-cost default is fine for almost every caller; the dialect
// indirection exists for clients with a different token grammar.
type Converter struct {
	dialect Dialect
}

// New creates a Converter using the standard game dialect
func New() *Converter {
	return &Converter{dialect: NewStandardDialect()}
}

// NewWithDialect creates a Converter targeting a specific MML dialect
func NewWithDialect(dialect Dialect) *Converter {
	return &Converter{dialect: dialect}
}

// Dialect returns the converter's target dialect
func (c *Converter) Dialect() Dialect {
	return c.dialect
}

// Convert runs the full pipeline on raw MIDI bytes: decode, resolve the
// timeline, partition into voices, encode, limit and synchronize. It never
// panics or returns partial voices; any failure comes back as a populated
// result with Success=false. A file without notes is not an error: it
// yields Success=true with zero voices.
func (c *Converter) Convert(midiData []byte, opts Options) ConversionResult {
	if opts.Mode == "" {
		opts.Mode = ModeNormal
	}
	if opts.CharLimit <= 0 {
		opts.CharLimit = DefaultCharLimit
	}

	tracks, division, err := decodeEvents(midiData)
	if err != nil {
		return ConversionResult{Success: false, Error: err.Error()}
	}

	notes, bpm := resolveNotes(tracks, division)
	voices := partitionVoices(notes, opts.Mode)
	if len(voices) == 0 {
		return ConversionResult{Success: true, BPM: bpm}
	}

	encoded := make([]encodedVoice, len(voices))
	totalNotes := 0
	for i, v := range voices {
		encoded[i] = encodeVoice(v, bpm, opts.Compress, c.dialect)
		totalNotes += len(v.Notes)
	}

	for i := range encoded {
		encoded[i] = truncateToLimit(encoded[i], opts.CharLimit)
	}
	encoded = synchronize(encoded)

	results := make([]VoiceResult, len(encoded))
	for i, e := range encoded {
		results[i] = e.result()
	}

	return ConversionResult{
		Success:    true,
		Voices:     results,
		BPM:        bpm,
		TotalNotes: totalNotes,
	}
}

// ConvertFile reads a MIDI file from disk and converts it. File access
// problems are returned as a hard error; conversion problems are reported
// inside the result like everywhere else.
func (c *Converter) ConvertFile(path string, opts Options) (ConversionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ConversionResult{}, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	if !IsMIDI(data) {
		return ConversionResult{
			Success: false,
			Error:   fmt.Sprintf("%s: %v", path, ErrMalformedHeader),
		}, nil
	}
	return c.Convert(data, opts), nil
}
