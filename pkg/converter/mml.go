package converter

import (
	"sort"
	"strings"
)

// token is one emitted MML unit. Truncation only ever happens between
// tokens, so text/ticks stay consistent no matter where a voice is cut.
// note marks the chain-initial token of a pitched note; tie continuations,
// rests and directives all carry false.
type token struct {
	text  string
	ticks uint32
	note  bool
}

// lengthPart is one length suffix plus the ticks it stands for
type lengthPart struct {
	suffix string
	ticks  uint32
}

// durationTable maps canonical tick counts to MML length suffixes.
// Compress mode drops the dotted variants so every note costs fewer
// characters at the price of duration precision.
func durationTable(compress bool) map[uint32]string {
	table := map[uint32]string{
		1536: "1",
		768:  "2",
		384:  "4",
		192:  "8",
		96:   "16",
		48:   "32",
		24:   "64",
	}
	if !compress {
		table[2304] = "1."
		table[1152] = "2."
		table[576] = "4."
		table[288] = "8."
		table[144] = "16."
		table[72] = "32."
		table[36] = "64."
	}
	return table
}

// sortedTicks returns the table's tick values, longest first
func sortedTicks(table map[uint32]string) []uint32 {
	ticks := make([]uint32, 0, len(table))
	for t := range table {
		ticks = append(ticks, t)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] > ticks[j] })
	return ticks
}

// tieCombination greedily covers ticks with representable lengths joined by
// ties. maxTies < 0 means unlimited. Falls back to a single sixteenth when
// nothing fits.
func tieCombination(ticks uint32, maxTies int, table map[uint32]string) []lengthPart {
	var parts []lengthPart
	remaining := ticks

	for _, length := range sortedTicks(table) {
		if maxTies >= 0 && len(parts) >= maxTies {
			break
		}
		for remaining >= length {
			parts = append(parts, lengthPart{suffix: table[length], ticks: length})
			remaining -= length
			if maxTies >= 0 && len(parts) >= maxTies {
				break
			}
		}
	}

	if len(parts) == 0 {
		parts = append(parts, lengthPart{suffix: "16", ticks: 96})
	}
	return parts
}

// nearestLength picks the single representable length closest to ticks,
// breaking ties toward the shorter one so the voice never drifts past the
// next note's start.
func nearestLength(ticks uint32, table map[uint32]string) []lengthPart {
	lengths := sortedTicks(table)
	// ascending so an equal-distance tie resolves to the shorter length
	sort.Slice(lengths, func(i, j int) bool { return lengths[i] < lengths[j] })

	best := lengths[0]
	bestDiff := int64(-1)
	for _, length := range lengths {
		diff := int64(length) - int64(ticks)
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best = length
			bestDiff = diff
		}
	}
	return []lengthPart{{suffix: table[best], ticks: best}}
}

// bestLengths selects how a duration is spelled. Exact matches win.
// Otherwise high octaves avoid ties: re-articulated tied notes up there
// audibly stutter in the client, so the fifth octave allows at most two
// ties and anything above takes the nearest single length.
func bestLengths(ticks uint32, octave int, table map[uint32]string, compress bool) []lengthPart {
	if suffix, ok := table[ticks]; ok {
		return []lengthPart{{suffix: suffix, ticks: ticks}}
	}
	if compress {
		return nearestLength(ticks, table)
	}
	switch {
	case octave <= 4:
		return tieCombination(ticks, -1, table)
	case octave == 5:
		parts := tieCombination(ticks, 2, table)
		if covered(parts) == ticks {
			return parts
		}
		return nearestLength(ticks, table)
	default:
		return nearestLength(ticks, table)
	}
}

func covered(parts []lengthPart) uint32 {
	var total uint32
	for _, p := range parts {
		total += p.ticks
	}
	return total
}

// pickDefaultLength chooses the L directive value: the common lengths 8,
// 16, 4 if any note uses them, else the most frequent base length.
func pickDefaultLength(notes []Note, table map[uint32]string, compress bool, dialect Dialect) string {
	counts := make(map[string]int)
	for _, n := range notes {
		_, octave := dialect.NoteName(n.Pitch)
		parts := bestLengths(n.Ticks(), octave, table, compress)
		base := strings.TrimSuffix(parts[0].suffix, ".")
		counts[base]++
	}

	for _, preferred := range []string{"8", "16", "4"} {
		if counts[preferred] > 0 {
			return preferred
		}
	}

	best := "8"
	bestCount := 0
	bases := make([]string, 0, len(counts))
	for base := range counts {
		bases = append(bases, base)
	}
	sort.Strings(bases)
	for _, base := range bases {
		if counts[base] > bestCount {
			best = base
			bestCount = counts[base]
		}
	}
	return best
}

// encodedVoice is a generated voice still in token form, which is what the
// limiter needs for boundary-safe truncation.
type encodedVoice struct {
	name   string
	bpm    int
	tokens []token
}

func (e encodedVoice) content() string {
	var b strings.Builder
	for _, t := range e.tokens {
		b.WriteString(t.text)
	}
	return b.String()
}

func (e encodedVoice) totalTicks() uint32 {
	var total uint32
	for _, t := range e.tokens {
		total += t.ticks
	}
	return total
}

func (e encodedVoice) noteCount() int {
	count := 0
	for _, t := range e.tokens {
		if t.note {
			count++
		}
	}
	return count
}

// durationSeconds converts canonical ticks to seconds at the voice tempo
func durationSeconds(ticks uint32, bpm int) float64 {
	if bpm <= 0 {
		return 0
	}
	return float64(ticks) / TPB * 60 / float64(bpm)
}

// result materializes the output-facing record. Duration is derived from
// the emitted tokens themselves, so metadata can never drift from content.
func (e encodedVoice) result() VoiceResult {
	content := e.content()
	return VoiceResult{
		Name:      e.name,
		Content:   content,
		CharCount: len(content),
		NoteCount: e.noteCount(),
		Duration:  durationSeconds(e.totalTicks(), e.bpm),
	}
}

// encodeVoice renders one voice as an MML token stream: tempo/volume/
// octave/default-length header, then notes in order with rests filling the
// gaps. Deterministic for a given voice, tempo and mode.
func encodeVoice(v Voice, bpm int, compress bool, dialect Dialect) encodedVoice {
	encoded := encodedVoice{name: v.Name, bpm: bpm}
	if len(v.Notes) == 0 {
		return encoded
	}

	table := durationTable(compress)
	def := pickDefaultLength(v.Notes, table, compress, dialect)

	_, startOctave := dialect.NoteName(v.Notes[0].Pitch)
	if startOctave < 2 {
		startOctave = 2
	}
	if startOctave > 6 {
		startOctave = 6
	}

	encoded.tokens = append(encoded.tokens,
		token{text: dialect.Tempo(bpm)},
		token{text: dialect.Volume()},
		token{text: dialect.Octave(startOctave)},
		token{text: dialect.DefaultLength(def)},
	)

	suffixOf := func(part lengthPart) string {
		if part.suffix == def {
			return ""
		}
		return part.suffix
	}

	currentOctave := startOctave
	var currentTick uint32

	for _, n := range v.Notes {
		if n.Start > currentTick {
			// rests use the neutral mid-octave tie strategy
			for _, part := range bestLengths(n.Start-currentTick, 4, table, compress) {
				encoded.tokens = append(encoded.tokens, token{
					text:  dialect.Rest(suffixOf(part)),
					ticks: part.ticks,
				})
				currentTick += part.ticks
			}
		}

		name, octave := dialect.NoteName(n.Pitch)
		if octave != currentOctave {
			encoded.tokens = append(encoded.tokens, token{text: dialect.Octave(octave)})
			currentOctave = octave
		}

		parts := bestLengths(n.Ticks(), octave, table, compress)
		encoded.tokens = append(encoded.tokens, token{
			text:  dialect.Note(name, suffixOf(parts[0])),
			ticks: parts[0].ticks,
			note:  true,
		})
		currentTick += parts[0].ticks

		for _, part := range parts[1:] {
			encoded.tokens = append(encoded.tokens,
				token{text: dialect.Tie()},
				token{text: dialect.Note(name, suffixOf(part)), ticks: part.ticks},
			)
			currentTick += part.ticks
		}
	}

	return encoded
}
