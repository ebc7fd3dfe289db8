package converter

import (
	"strings"
	"testing"
)

func limiterFixture() encodedVoice {
	return encodedVoice{name: "멜로디", bpm: 120, tokens: []token{
		{text: "T120"},
		{text: "V15"},
		{text: "O4"},
		{text: "L4"},
		{text: "C", ticks: 384, note: true},
		{text: "R8", ticks: 192},
		{text: "D", ticks: 384, note: true},
		{text: "&"},
		{text: "D8", ticks: 192},
		{text: "E", ticks: 384, note: true},
	}}
}

func TestStripDangling(t *testing.T) {
	tokens := []token{
		{text: "C", ticks: 384, note: true},
		{text: "&"},
		{text: "C8", ticks: 192},
		{text: "R8", ticks: 192},
		{text: "O5"},
	}

	stripped := stripDangling(tokens)
	if len(stripped) != 1 || stripped[0].text != "C" {
		t.Errorf("stripDangling left %+v, want just the note C", stripped)
	}

	if got := stripDangling(nil); len(got) != 0 {
		t.Errorf("stripDangling(nil) = %+v", got)
	}
}

func TestTruncateToLimitFitsUnchanged(t *testing.T) {
	v := limiterFixture()
	full := v.content()

	truncated := truncateToLimit(v, len(full))
	if truncated.content() != full {
		t.Errorf("fitting voice changed: %q -> %q", full, truncated.content())
	}
}

func TestTruncateToLimitCutsAtTokenBoundary(t *testing.T) {
	v := limiterFixture()
	full := v.content() // "T120V15O4L4CR8D&D8E"

	truncated := truncateToLimit(v, 14)
	got := truncated.content()

	if len(got) > 14 {
		t.Errorf("truncated content %q exceeds limit 14", got)
	}
	if !strings.HasPrefix(full, got) {
		t.Errorf("truncated content %q is not a prefix of %q", got, full)
	}
	// limit 14 lands inside "R8"; the cut must back off to the note C
	if got != "T120V15O4L4C" {
		t.Errorf("content = %q, want T120V15O4L4C", got)
	}
	if truncated.noteCount() != 1 {
		t.Errorf("note count = %d, want 1", truncated.noteCount())
	}
}

func TestTruncateToLimitIdempotent(t *testing.T) {
	v := limiterFixture()

	once := truncateToLimit(v, 16)
	twice := truncateToLimit(once, 16)
	if once.content() != twice.content() {
		t.Errorf("second truncation changed output: %q -> %q", once.content(), twice.content())
	}
}

func TestTruncateToLimitPreservesOriginal(t *testing.T) {
	v := limiterFixture()
	before := v.content()

	truncateToLimit(v, 5)
	if v.content() != before {
		t.Errorf("truncation mutated its input: %q", v.content())
	}
}

func TestSynchronizeTrimsToShortest(t *testing.T) {
	melody := encodedVoice{name: "멜로디", bpm: 120, tokens: []token{
		{text: "T120"}, {text: "V15"}, {text: "O4"}, {text: "L4"},
		{text: "C", ticks: 384, note: true},
	}}
	chord := encodedVoice{name: "화음1", bpm: 120, tokens: []token{
		{text: "T120"}, {text: "V15"}, {text: "O4"}, {text: "L4"},
		{text: "R8", ticks: 192},
		{text: "E", ticks: 384, note: true},
		{text: "G", ticks: 384, note: true},
	}}

	synced := synchronize([]encodedVoice{melody, chord})

	if synced[0].content() != melody.content() {
		t.Errorf("shortest voice changed: %q", synced[0].content())
	}
	// E begins at tick 192, before the 384-tick target, so it survives
	// even though it sounds past the cutoff. G begins at 576 and goes.
	if got := synced[1].content(); got != "T120V15O4L4R8E" {
		t.Errorf("chord content = %q, want T120V15O4L4R8E", got)
	}
	if synced[1].noteCount() != 1 {
		t.Errorf("chord note count = %d, want 1", synced[1].noteCount())
	}
}

func TestSynchronizeSingleVoiceUntouched(t *testing.T) {
	v := limiterFixture()
	synced := synchronize([]encodedVoice{v})
	if len(synced) != 1 || synced[0].content() != v.content() {
		t.Errorf("single voice changed: %+v", synced)
	}
}

func TestSynchronizeEqualVoicesUntouched(t *testing.T) {
	a := limiterFixture()
	b := limiterFixture()
	b.name = "화음1"

	synced := synchronize([]encodedVoice{a, b})
	for i, v := range synced {
		if v.content() != a.content() {
			t.Errorf("voice %d changed: %q", i, v.content())
		}
	}
}
