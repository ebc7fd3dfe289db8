package converter

import (
	"bytes"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Test fixtures are synthesized as real SMF bytes so the engine tests
// exercise the actual decode path.

func fxEvent(delta uint32, msg midi.Message) smf.Event {
	return smf.Event{Delta: delta, Message: smf.Message(msg)}
}

func fxTempo(delta uint32, bpm float64) smf.Event {
	return smf.Event{Delta: delta, Message: smf.Message(smf.MetaTempo(bpm))}
}

func buildSMF(t *testing.T, division uint16, tracks ...[]smf.Event) []byte {
	t.Helper()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(division)

	for _, events := range tracks {
		track := smf.Track(events)
		track.Close(0)
		if err := s.Add(track); err != nil {
			t.Fatalf("failed to add track: %v", err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("failed to write SMF: %v", err)
	}
	return buf.Bytes()
}

// simpleNoteTrack emits sequential notes of the given pitches, each length
// ticks long, back to back starting at tick 0.
func simpleNoteTrack(pitches []uint8, length uint32) []smf.Event {
	var events []smf.Event
	for _, pitch := range pitches {
		events = append(events,
			fxEvent(0, midi.NoteOn(0, pitch, 100)),
			fxEvent(length, midi.NoteOff(0, pitch)),
		)
	}
	return events
}
