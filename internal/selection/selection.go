// Package selection gives each movie in a batch its own image and title
// where the candidates allow it.
package selection

import "unicode/utf8"

// MaxBatch is the most movies shown together. Extra candidates are ignored.
const MaxBatch = 3

// titleKeyLen is how many leading characters decide that two titles are
// the same.
const titleKeyLen = 5

// Candidate is one generated movie with its images and titles, best first.
type Candidate struct {
	Plot   string
	Images []string
	Titles []string
}

// Pick is a movie ready to show.
type Pick struct {
	Plot  string
	Image string
	Title string
}

// Select assigns an image and a title to each of the first MaxBatch
// candidates, in order. Each takes its best option not yet used by an
// earlier candidate. When every option is used it falls back to the first
// candidate's best option, so repeats are possible but never gaps.
func Select(candidates []Candidate) []Pick {
	if len(candidates) > MaxBatch {
		candidates = candidates[:MaxBatch]
	}
	if len(candidates) == 0 {
		return nil
	}

	images := newGreedy(first(candidates[0].Images), identity)
	titles := newGreedy(first(candidates[0].Titles), TitleKey)

	picks := make([]Pick, len(candidates))
	for i, c := range candidates {
		picks[i] = Pick{
			Plot:  c.Plot,
			Image: images.take(c.Images),
			Title: titles.take(c.Titles),
		}
	}
	return picks
}

// TitleKey is the part of a title used to spot near-duplicates.
func TitleKey(title string) string {
	if utf8.RuneCountInString(title) <= titleKeyLen {
		return title
	}
	return string([]rune(title)[:titleKeyLen])
}

// greedy hands out options, preferring ones whose key is unused.
type greedy struct {
	used     map[string]bool
	fallback string
	key      func(string) string
}

func newGreedy(fallback string, key func(string) string) *greedy {
	return &greedy{used: make(map[string]bool), fallback: fallback, key: key}
}

func (g *greedy) take(options []string) string {
	choice := g.fallback
	for _, option := range options {
		if !g.used[g.key(option)] {
			choice = option
			break
		}
	}
	g.used[g.key(choice)] = true
	return choice
}

func first(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

func identity(s string) string {
	return s
}
