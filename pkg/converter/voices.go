package converter

import (
	"fmt"
	"sort"
)

// MaxVoices caps the number of simultaneous voices the client can play.
// Notes beyond that polyphony are dropped.
const MaxVoices = 6

// Voice role names shown to the user; the game community expects the
// Korean labels.
const (
	melodyName  = "멜로디"
	chordPrefix = "화음"
)

// pickMelody decides which of several simultaneous notes belongs to the
// melody slot. Default policy: stay close to the previous melody pitch
// (within an octave) and take the highest such candidate, else the highest
// overall. Isolated here because the convention is client-specific and may
// need adjusting without touching the allocator.
func pickMelody(simultaneous []Note, lastMelodyPitch int) Note {
	if lastMelodyPitch >= 0 {
		best := -1
		for i, n := range simultaneous {
			distance := int(n.Pitch) - lastMelodyPitch
			if distance < 0 {
				distance = -distance
			}
			if distance <= 12 && (best < 0 || n.Pitch > simultaneous[best].Pitch) {
				best = i
			}
		}
		if best >= 0 {
			return simultaneous[best]
		}
	}
	// Input is sorted by descending pitch; the first note is the highest.
	return simultaneous[0]
}

// allocateSlots distributes notes into up to MaxVoices monophonic slots
// using greedy interval coloring: each note goes to the first slot whose
// tail has ended by the note's start. Slot 0 is the melody stream. Input
// must be sorted by start time, then descending pitch.
func allocateSlots(notes []Note) [][]Note {
	slots := make([][]Note, MaxVoices)
	lastMelodyPitch := -1

	place := func(n Note) {
		for i := range slots {
			if len(slots[i]) == 0 || slots[i][len(slots[i])-1].End <= n.Start {
				slots[i] = append(slots[i], n)
				if i == 0 {
					lastMelodyPitch = int(n.Pitch)
				}
				return
			}
		}
		// polyphony beyond MaxVoices: dropped
	}

	for i := 0; i < len(notes); {
		j := i + 1
		for j < len(notes) && notes[j].Start == notes[i].Start {
			j++
		}
		simultaneous := notes[i:j]

		if len(simultaneous) == 1 {
			place(simultaneous[0])
			i = j
			continue
		}

		melody := pickMelody(simultaneous, lastMelodyPitch)
		bass := simultaneous[len(simultaneous)-1]

		var remaining []Note
		for _, n := range simultaneous {
			if n.Pitch != melody.Pitch && n.Pitch != bass.Pitch {
				remaining = append(remaining, n)
			}
		}
		sort.SliceStable(remaining, func(a, b int) bool {
			return remaining[a].Velocity > remaining[b].Velocity
		})

		priority := []Note{melody}
		if bass.Pitch != melody.Pitch {
			priority = append(priority, bass)
		}
		priority = append(priority, remaining...)

		for _, n := range priority {
			place(n)
		}
		i = j
	}

	var filled [][]Note
	for _, slot := range slots {
		if len(slot) > 0 {
			filled = append(filled, slot)
		}
	}
	return filled
}

// partitionVoices assigns every note to exactly one named voice so that no
// voice contains two overlapping notes. Normal mode allocates directly;
// instrument mode allocates per instrument group and qualifies the names.
// An empty note list yields zero voices.
func partitionVoices(notes []Note, mode Mode) []Voice {
	if len(notes) == 0 {
		return nil
	}
	if mode != ModeInstrument {
		var voices []Voice
		for i, slot := range allocateSlots(notes) {
			name := melodyName
			if i > 0 {
				name = fmt.Sprintf("%s%d", chordPrefix, i)
			}
			voices = append(voices, Voice{Name: name, Notes: slot})
		}
		return voices
	}

	groups := make(map[string][]Note)
	for _, n := range notes {
		groups[n.Instrument] = append(groups[n.Instrument], n)
	}
	instruments := make([]string, 0, len(groups))
	for name := range groups {
		instruments = append(instruments, name)
	}
	sort.Strings(instruments)

	var voices []Voice
	chordIndex := 0
	for _, instrument := range instruments {
		for i, slot := range allocateSlots(groups[instrument]) {
			var name string
			if i == 0 {
				name = fmt.Sprintf("%s (%s)", melodyName, instrument)
			} else {
				chordIndex++
				name = fmt.Sprintf("%s%d (%s)", chordPrefix, chordIndex, instrument)
			}
			voices = append(voices, Voice{Name: name, Notes: slot})
		}
	}
	return voices
}
