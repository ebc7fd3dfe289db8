package converter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2/smf"
)

// drumChannel is General MIDI percussion; its notes are unpitched and skipped
const drumChannel = 9

// IsMIDI reports whether data starts with a standard MIDI file header
func IsMIDI(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "MThd"
}

// validateChunks walks the raw chunk structure before the SMF reader touches
// it, so structural damage maps onto the fatal error taxonomy instead of an
// opaque parse failure.
func validateChunks(data []byte) error {
	if len(data) < 14 || string(data[:4]) != "MThd" {
		return fmt.Errorf("%w: missing MThd chunk", ErrMalformedHeader)
	}
	headerLen := binary.BigEndian.Uint32(data[4:8])
	if headerLen < 6 || uint64(8+headerLen) > uint64(len(data)) {
		return fmt.Errorf("%w: header chunk truncated", ErrMalformedHeader)
	}

	format := binary.BigEndian.Uint16(data[8:10])
	if format > 1 {
		return fmt.Errorf("%w: format %d files are not supported", ErrUnsupportedFormat, format)
	}
	division := binary.BigEndian.Uint16(data[12:14])
	if division&0x8000 != 0 {
		return fmt.Errorf("%w: SMPTE time division", ErrUnsupportedFormat)
	}
	if division == 0 {
		return fmt.Errorf("%w: zero time division", ErrMalformedHeader)
	}

	offset := uint64(8 + headerLen)
	for offset < uint64(len(data)) {
		if offset+8 > uint64(len(data)) {
			return fmt.Errorf("%w: chunk header at offset %d", ErrTruncatedTrack, offset)
		}
		length := binary.BigEndian.Uint32(data[offset+4 : offset+8])
		if offset+8+uint64(length) > uint64(len(data)) {
			return fmt.Errorf("%w: chunk at offset %d declares %d bytes", ErrTruncatedTrack, offset, length)
		}
		offset += 8 + uint64(length)
	}
	return nil
}

// decodeEvents parses SMF bytes into per-track event lists with absolute
// ticks, plus the file's ticks-per-quarter-note. Unrecognized events
// (lyrics, SysEx, other meta) are skipped without error. Pure parse, no
// timing semantics yet.
func decodeEvents(data []byte) ([][]RawEvent, uint16, error) {
	if err := validateChunks(data); err != nil {
		return nil, 0, err
	}

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	division := uint16(TPB)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		division = mt.Resolution()
	} else {
		return nil, 0, fmt.Errorf("%w: non-metric time format", ErrUnsupportedFormat)
	}

	tracks := make([][]RawEvent, 0, len(s.Tracks))
	for trackIndex, track := range s.Tracks {
		var events []RawEvent
		var tick uint32

		for _, ev := range track {
			tick += ev.Delta
			msg := ev.Message

			var channel, key, velocity, program uint8
			var bpm float64
			switch {
			case msg.GetNoteOn(&channel, &key, &velocity):
				// a note-on with velocity 0 is a note-off in disguise
				kind := EventNoteOn
				if velocity == 0 {
					kind = EventNoteOff
				}
				events = append(events, RawEvent{
					Kind:     kind,
					Track:    trackIndex,
					Channel:  channel,
					Tick:     tick,
					Pitch:    key,
					Velocity: velocity,
				})
			case msg.GetNoteOff(&channel, &key, &velocity):
				events = append(events, RawEvent{
					Kind:    EventNoteOff,
					Track:   trackIndex,
					Channel: channel,
					Tick:    tick,
					Pitch:   key,
				})
			case msg.GetProgramChange(&channel, &program):
				events = append(events, RawEvent{
					Kind:    EventProgramChange,
					Track:   trackIndex,
					Channel: channel,
					Tick:    tick,
					Program: program,
				})
			case msg.GetMetaTempo(&bpm):
				if bpm > 0 {
					events = append(events, RawEvent{
						Kind:             EventTempo,
						Track:            trackIndex,
						Tick:             tick,
						MicrosPerQuarter: uint32(math.Round(60000000 / bpm)),
					})
				}
			}
		}
		tracks = append(tracks, events)
	}

	return tracks, division, nil
}
