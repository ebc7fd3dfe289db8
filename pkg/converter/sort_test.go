package converter

import (
	"testing"
)

func sortFixture() []VoiceResult {
	return []VoiceResult{
		{Name: "멜로디 (Violin)"},
		{Name: "화음1 (Cello)"},
		{Name: "멜로디 (Cello)"},
		{Name: "화음1 (Violin)"},
	}
}

func TestSortVoicesDefaultKeepsOrder(t *testing.T) {
	in := sortFixture()
	out := SortVoices(in, SortDefault)
	for i := range in {
		if out[i].Name != in[i].Name {
			t.Errorf("position %d = %q, want %q", i, out[i].Name, in[i].Name)
		}
	}
}

func TestSortVoicesByName(t *testing.T) {
	out := SortVoices(sortFixture(), SortName)
	want := []string{"멜로디 (Cello)", "멜로디 (Violin)", "화음1 (Cello)", "화음1 (Violin)"}
	for i, name := range want {
		if out[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, out[i].Name, name)
		}
	}
}

func TestSortVoicesByInstrument(t *testing.T) {
	out := SortVoices(sortFixture(), SortInstrument)
	want := []string{"멜로디 (Cello)", "화음1 (Cello)", "멜로디 (Violin)", "화음1 (Violin)"}
	for i, name := range want {
		if out[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, out[i].Name, name)
		}
	}
}

func TestSortVoicesDoesNotMutateInput(t *testing.T) {
	in := sortFixture()
	SortVoices(in, SortName)
	if in[0].Name != "멜로디 (Violin)" {
		t.Errorf("input mutated: first element is %q", in[0].Name)
	}
}

func TestInstrumentOf(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"멜로디 (Violin)", "Violin"},
		{"화음12 (Acoustic Grand Piano)", "Acoustic Grand Piano"},
		{"멜로디", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := instrumentOf(tt.name); got != tt.want {
			t.Errorf("instrumentOf(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
