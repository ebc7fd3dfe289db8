package converter

import (
	"math"
	"sort"
)

// defaultMicrosPerQuarter is 120 BPM, the SMF default when no tempo is set
const defaultMicrosPerQuarter = 500000

// buildTempoMap merges the tempo events of all tracks into one tick-ordered
// timeline. Ties are broken by track index, then event order, which the
// stable sort preserves from collection order. A file without any tempo
// event gets the 120 BPM default at tick 0.
func buildTempoMap(tracks [][]RawEvent) TempoMap {
	var tm TempoMap
	for _, events := range tracks {
		for _, ev := range events {
			if ev.Kind == EventTempo {
				tm = append(tm, TempoChange{Tick: ev.Tick, MicrosPerQuarter: ev.MicrosPerQuarter})
			}
		}
	}
	sort.SliceStable(tm, func(i, j int) bool { return tm[i].Tick < tm[j].Tick })

	if len(tm) == 0 || tm[0].Tick > 0 {
		tm = append(TempoMap{{Tick: 0, MicrosPerQuarter: defaultMicrosPerQuarter}}, tm...)
	}
	return tm
}

// BPM returns the reported tempo, taken from the map's first entry
func (tm TempoMap) BPM() int {
	return int(math.Round(60000000 / float64(tm[0].MicrosPerQuarter)))
}

// MicrosecondsAt converts an absolute tick into microseconds by integrating
// over the tempo segments up to that tick.
func (tm TempoMap) MicrosecondsAt(tick uint32, division uint16) float64 {
	var micros float64
	for i, seg := range tm {
		if seg.Tick >= tick {
			break
		}
		segEnd := tick
		if i+1 < len(tm) && tm[i+1].Tick < tick {
			segEnd = tm[i+1].Tick
		}
		micros += float64(segEnd-seg.Tick) * float64(seg.MicrosPerQuarter) / float64(division)
	}
	return micros
}

// canonicalTick maps an absolute file tick onto the canonical TPB grid of
// the reported tempo, snapped to GridSize.
func canonicalTick(tm TempoMap, tick uint32, division uint16) uint32 {
	quarters := tm.MicrosecondsAt(tick, division) / float64(tm[0].MicrosPerQuarter)
	exact := quarters * TPB
	return uint32(math.Round(exact/GridSize)) * GridSize
}

type pendingKey struct {
	channel uint8
	pitch   uint8
}

type openNote struct {
	tick     uint32
	velocity uint8
	program  uint8
}

// resolveNotes pairs note-on/note-off events into Notes on the canonical
// grid and tags each with the governing instrument. A note-on without a
// matching note-off is closed at the track's final tick. Returns the flat
// note list sorted by start (descending pitch on ties) with duplicate
// start+pitch entries reduced to the loudest, plus the reported BPM.
func resolveNotes(tracks [][]RawEvent, division uint16) ([]Note, int) {
	tm := buildTempoMap(tracks)

	var notes []Note
	appendNote := func(key pendingKey, open openNote, endTick uint32) {
		start := canonicalTick(tm, open.tick, division)
		end := canonicalTick(tm, endTick, division)
		length := uint32(0)
		if end > start {
			length = end - start
		}
		if length < GridSize {
			length = GridSize
		}
		notes = append(notes, Note{
			Pitch:      key.pitch,
			Velocity:   open.velocity,
			Channel:    key.channel,
			Start:      start,
			End:        start + length,
			Instrument: GMInstrumentName(open.program),
		})
	}

	for _, events := range tracks {
		programs := make(map[uint8]uint8)
		pending := make(map[pendingKey][]openNote)
		var finalTick uint32

		for _, ev := range events {
			if ev.Tick > finalTick {
				finalTick = ev.Tick
			}
			switch ev.Kind {
			case EventProgramChange:
				programs[ev.Channel] = ev.Program
			case EventNoteOn:
				if ev.Channel == drumChannel {
					continue
				}
				key := pendingKey{channel: ev.Channel, pitch: ev.Pitch}
				pending[key] = append(pending[key], openNote{
					tick:     ev.Tick,
					velocity: ev.Velocity,
					program:  programs[ev.Channel],
				})
			case EventNoteOff:
				key := pendingKey{channel: ev.Channel, pitch: ev.Pitch}
				stack := pending[key]
				if len(stack) == 0 {
					continue // stray note-off
				}
				open := stack[len(stack)-1]
				pending[key] = stack[:len(stack)-1]
				appendNote(key, open, ev.Tick)
			}
		}

		// Unterminated notes are closed at the track's final tick.
		// Recovered locally, never fatal. Keys are walked in sorted
		// order so recovery stays deterministic.
		keys := make([]pendingKey, 0, len(pending))
		for key := range pending {
			if len(pending[key]) > 0 {
				keys = append(keys, key)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].channel != keys[j].channel {
				return keys[i].channel < keys[j].channel
			}
			return keys[i].pitch < keys[j].pitch
		})
		for _, key := range keys {
			for _, open := range pending[key] {
				appendNote(key, open, finalTick)
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Pitch > notes[j].Pitch
	})

	return dedupeNotes(notes), tm.BPM()
}

// dedupeNotes collapses notes sharing a snapped start and pitch down to the
// one with the highest velocity. Input must be sorted by start, then pitch.
func dedupeNotes(notes []Note) []Note {
	deduped := notes[:0]
	for i := 0; i < len(notes); {
		best := notes[i]
		j := i + 1
		for j < len(notes) && notes[j].Start == best.Start && notes[j].Pitch == best.Pitch {
			if notes[j].Velocity > best.Velocity {
				best = notes[j]
			}
			j++
		}
		deduped = append(deduped, best)
		i = j
	}
	return deduped
}
