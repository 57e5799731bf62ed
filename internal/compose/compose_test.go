package compose

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/mrwolf/hallmark-server/internal/plot"
)

type mapValues map[plot.Key]string

func (m mapValues) Lookup(key plot.Key) plot.Text {
	return plot.Some(m[key])
}

func TestSplit(t *testing.T) {
	got := Split("#[]#the #[cat]# sat")
	want := []string{"", "", "the ", "cat", " sat"}
	if len(got) != len(want) {
		t.Fatalf("Split() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Split()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCompose(t *testing.T) {
	template := "#[]#the #[cat]# sat on #[the mat]#."
	keys := []plot.Key{plot.KeyOverride, plot.KeyMainChar, plot.KeyHometown}

	tests := []struct {
		name   string
		keys   []plot.Key
		values mapValues
		want   string
	}{
		{
			name:   "all slots resolved",
			keys:   keys,
			values: mapValues{plot.KeyOverride: "suddenly ", plot.KeyMainChar: "dog", plot.KeyHometown: "a log"},
			want:   "Suddenly the dog sat on a log.",
		},
		{
			name:   "unresolved slots keep tag text",
			keys:   keys,
			values: mapValues{plot.KeyHometown: "a log"},
			want:   "The cat sat on a log.",
		},
		{
			name:   "nothing resolved",
			keys:   keys,
			values: mapValues{},
			want:   "The cat sat on the mat.",
		},
		{
			name:   "too few keys",
			keys:   keys[:2],
			values: mapValues{plot.KeyMainChar: "dog"},
			want:   FallbackPlot,
		},
		{
			name:   "too many keys",
			keys:   append(append([]plot.Key{}, keys...), plot.KeyTopic),
			values: mapValues{plot.KeyMainChar: "dog"},
			want:   FallbackPlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(template, tt.keys, tt.values)
			if got != tt.want {
				t.Errorf("Compose() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposeUnbalancedTags(t *testing.T) {
	got := Compose("the #[cat sat", []plot.Key{plot.KeyMainChar}, mapValues{})
	if got != FallbackPlot {
		t.Errorf("Compose() = %q, want fallback", got)
	}
}

func TestComposeBasePlot(t *testing.T) {
	got := Compose(plot.BasePlot, plot.SlotOrder, plot.Variables{})

	if strings.Contains(got, OpenTag) || strings.Contains(got, CloseTag) {
		t.Errorf("output still contains tag markers: %q", got)
	}
	want := "An attractive young <strong>woman</strong> works hard in"
	if !strings.HasPrefix(got, want) {
		t.Errorf("Compose() = %q, want prefix %q", got, want)
	}
	if !strings.HasSuffix(got, "the true meaning of <strong>Christmas</strong>.") {
		t.Errorf("Compose() = %q, want the default ending", got)
	}
}

func TestComposeBasePlotResolved(t *testing.T) {
	vars := plot.Variables{
		MainChar:    plot.Some("dragon"),
		PronounSubj: plot.Some("they"),
		PronounObj:  plot.Some("them"),
		Works:       plot.Some("work"),
		Meets:       plot.Some("meet"),
		Topic:       plot.Some("tax law"),
	}
	got := Compose(plot.BasePlot, plot.SlotOrder, vars)

	for _, fragment := range []string{"<strong>dragon</strong> work hard", "require them to", "where they grew up", "There they meet", "<strong>tax law</strong>."} {
		if !strings.Contains(got, fragment) {
			t.Errorf("Compose() = %q, missing %q", got, fragment)
		}
	}
	r, _ := utf8.DecodeRuneInString(got)
	if !unicode.IsUpper(r) {
		t.Errorf("Compose() = %q, want an uppercase first letter", got)
	}
}

func TestTidy(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello   world ", "Hello world"},
		{"#[a]# swarm of #[bees]#", "A swarm of bees"},
		{"éclair time", "Éclair time"},
		{"   ", ""},
		{"", ""},
		{"Already fine.", "Already fine."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Tidy(tt.in); got != tt.want {
				t.Errorf("Tidy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandPrefix(t *testing.T) {
	words := map[string]string{"adjective": "grumpy", "colour": "teal"}
	pick := func(category string) (string, bool) {
		w, ok := words[category]
		return w, ok
	}

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"empty", "", ""},
		{"no tags", "talking", "talking"},
		{"single category", "#[adjective]# talking", "grumpy talking"},
		{"two categories", "#[adjective]#, #[colour]# talking", "grumpy, teal talking"},
		{"unknown category", "#[smell]# talking", "happy talking"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPrefix(tt.prefix, pick); got != tt.want {
				t.Errorf("ExpandPrefix(%q) = %q, want %q", tt.prefix, got, tt.want)
			}
		})
	}
}
