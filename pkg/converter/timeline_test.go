package converter

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestBuildTempoMapDefault(t *testing.T) {
	tm := buildTempoMap([][]RawEvent{{
		{Kind: EventNoteOn, Tick: 0, Pitch: 60, Velocity: 100},
	}})

	if len(tm) != 1 {
		t.Fatalf("got %d entries, want 1", len(tm))
	}
	if tm[0].Tick != 0 || tm[0].MicrosPerQuarter != defaultMicrosPerQuarter {
		t.Errorf("default entry = %+v", tm[0])
	}
	if tm.BPM() != 120 {
		t.Errorf("BPM() = %d, want 120", tm.BPM())
	}
}

func TestBuildTempoMapMergesTracks(t *testing.T) {
	tm := buildTempoMap([][]RawEvent{
		{{Kind: EventTempo, Track: 0, Tick: 960, MicrosPerQuarter: 250000}},
		{{Kind: EventTempo, Track: 1, Tick: 0, MicrosPerQuarter: 600000}},
	})

	if len(tm) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(tm), tm)
	}
	if tm[0].Tick != 0 || tm[0].MicrosPerQuarter != 600000 {
		t.Errorf("first entry = %+v, want tick 0 at 600000", tm[0])
	}
	if tm[1].Tick != 960 || tm[1].MicrosPerQuarter != 250000 {
		t.Errorf("second entry = %+v, want tick 960 at 250000", tm[1])
	}
	if tm.BPM() != 100 {
		t.Errorf("BPM() = %d, want 100", tm.BPM())
	}
}

func TestMicrosecondsAtIntegratesSegments(t *testing.T) {
	tm := TempoMap{
		{Tick: 0, MicrosPerQuarter: 500000},   // 120 BPM
		{Tick: 480, MicrosPerQuarter: 250000}, // 240 BPM from the second quarter on
	}

	tests := []struct {
		tick uint32
		want float64
	}{
		{0, 0},
		{480, 500000},
		{960, 750000},
	}
	for _, tt := range tests {
		if got := tm.MicrosecondsAt(tt.tick, 480); got != tt.want {
			t.Errorf("MicrosecondsAt(%d) = %f, want %f", tt.tick, got, tt.want)
		}
	}
}

func TestResolveNotesPairsAndScales(t *testing.T) {
	// division 480; canonical grid rescales a quarter to 384 ticks
	track := []smf.Event{
		fxEvent(0, midi.NoteOn(0, 60, 100)),
		fxEvent(480, midi.NoteOff(0, 60)),
		fxEvent(0, midi.NoteOn(0, 72, 90)),
		fxEvent(240, midi.NoteOff(0, 72)),
	}
	data := buildSMF(t, 480, track)
	tracks, division, err := decodeEvents(data)
	if err != nil {
		t.Fatalf("decodeEvents() error: %v", err)
	}

	notes, bpm := resolveNotes(tracks, division)
	if bpm != 120 {
		t.Errorf("bpm = %d, want 120", bpm)
	}
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}

	if notes[0].Pitch != 60 || notes[0].Start != 0 || notes[0].End != 384 {
		t.Errorf("note 0 = %+v, want pitch 60 spanning [0,384)", notes[0])
	}
	if notes[1].Pitch != 72 || notes[1].Start != 384 || notes[1].End != 576 {
		t.Errorf("note 1 = %+v, want pitch 72 spanning [384,576)", notes[1])
	}
	if notes[0].Instrument != "Acoustic Grand Piano" {
		t.Errorf("default instrument = %q", notes[0].Instrument)
	}
}

func TestResolveNotesInstrumentTagging(t *testing.T) {
	track := []smf.Event{
		fxEvent(0, midi.ProgramChange(0, 40)),
		fxEvent(0, midi.NoteOn(0, 67, 100)),
		fxEvent(384, midi.NoteOff(0, 67)),
	}
	data := buildSMF(t, 384, track)
	tracks, division, err := decodeEvents(data)
	if err != nil {
		t.Fatalf("decodeEvents() error: %v", err)
	}

	notes, _ := resolveNotes(tracks, division)
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if notes[0].Instrument != "Violin" {
		t.Errorf("instrument = %q, want Violin", notes[0].Instrument)
	}
}

func TestResolveNotesClosesUnterminated(t *testing.T) {
	// note-on without note-off; track ends at tick 768
	track := []smf.Event{
		fxEvent(0, midi.NoteOn(0, 60, 100)),
		fxEvent(0, midi.NoteOn(0, 64, 100)),
		fxEvent(768, midi.NoteOff(0, 64)),
	}
	data := buildSMF(t, 384, track)
	tracks, division, err := decodeEvents(data)
	if err != nil {
		t.Fatalf("decodeEvents() error: %v", err)
	}

	notes, _ := resolveNotes(tracks, division)
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	for _, n := range notes {
		if n.End != 768 {
			t.Errorf("note %d ends at %d, want 768 (track end)", n.Pitch, n.End)
		}
	}
}

func TestResolveNotesSkipsDrumChannel(t *testing.T) {
	track := []smf.Event{
		fxEvent(0, midi.NoteOn(9, 36, 127)),
		fxEvent(96, midi.NoteOff(9, 36)),
		fxEvent(0, midi.NoteOn(0, 60, 100)),
		fxEvent(96, midi.NoteOff(0, 60)),
	}
	data := buildSMF(t, 384, track)
	tracks, division, err := decodeEvents(data)
	if err != nil {
		t.Fatalf("decodeEvents() error: %v", err)
	}

	notes, _ := resolveNotes(tracks, division)
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1 (drums skipped)", len(notes))
	}
	if notes[0].Pitch != 60 {
		t.Errorf("kept pitch %d, want 60", notes[0].Pitch)
	}
}

func TestDedupeNotesKeepsLoudest(t *testing.T) {
	notes := []Note{
		{Pitch: 60, Velocity: 80, Start: 0, End: 96},
		{Pitch: 60, Velocity: 120, Start: 0, End: 192},
		{Pitch: 60, Velocity: 100, Start: 96, End: 192},
	}

	deduped := dedupeNotes(notes)
	if len(deduped) != 2 {
		t.Fatalf("got %d notes, want 2", len(deduped))
	}
	if deduped[0].Velocity != 120 {
		t.Errorf("kept velocity %d, want 120", deduped[0].Velocity)
	}
	if deduped[1].Start != 96 {
		t.Errorf("second note start = %d, want 96", deduped[1].Start)
	}
}

func TestResolveNotesMinimumDuration(t *testing.T) {
	// a 4-tick blip still becomes one grid cell
	track := []smf.Event{
		fxEvent(0, midi.NoteOn(0, 60, 100)),
		fxEvent(4, midi.NoteOff(0, 60)),
	}
	data := buildSMF(t, 384, track)
	tracks, division, err := decodeEvents(data)
	if err != nil {
		t.Fatalf("decodeEvents() error: %v", err)
	}

	notes, _ := resolveNotes(tracks, division)
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if notes[0].Ticks() != GridSize {
		t.Errorf("duration = %d ticks, want %d", notes[0].Ticks(), GridSize)
	}
}
