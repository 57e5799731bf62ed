package plot

import (
	"strings"
	"testing"
)

func TestBasePlotHasOneTagPerSlot(t *testing.T) {
	opens := strings.Count(BasePlot, "#[")
	closes := strings.Count(BasePlot, "]#")
	if opens != len(SlotOrder) || closes != len(SlotOrder) {
		t.Errorf("BasePlot has %d/%d tags, SlotOrder has %d keys", opens, closes, len(SlotOrder))
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name   string
		text   Text
		wantOK bool
		want   string
	}{
		{"resolved", Some("dragon"), true, "dragon"},
		{"empty counts as unresolved", Some(""), false, "fallback"},
		{"none", None(), false, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.text.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v", tt.text.OK, tt.wantOK)
			}
			if got := tt.text.Or("fallback"); got != tt.want {
				t.Errorf("Or() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	v := Variables{
		Override:    Some("override"),
		MainChar:    Some("mainChar"),
		PronounSubj: Some("pronounSubj"),
		PronounObj:  Some("pronounObj"),
		Works:       Some("works"),
		Meets:       Some("meets"),
		Hometown:    Some("hometown"),
		JobDesc:     Some("jobDesc"),
		Lifeguide:   Some("lifeguide"),
		Topic:       Some("topic"),
	}

	seen := map[Key]bool{}
	for _, key := range SlotOrder {
		if seen[key] {
			continue
		}
		seen[key] = true
		if got := v.Lookup(key); !got.OK || got.Value == "" {
			t.Errorf("Lookup(%s) = %+v", key, got)
		}
	}
	if len(seen) != 10 {
		t.Errorf("expected 10 distinct slot keys, got %d", len(seen))
	}

	if got := v.Lookup(Key("unknown")); got.OK {
		t.Errorf("Lookup(unknown) = %+v, want unresolved", got)
	}
}
