// Package generator produces one movie: a plot plus ranked images and
// titles that suit it.
package generator

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrwolf/hallmark-server/internal/compose"
	"github.com/mrwolf/hallmark-server/internal/grammar"
	"github.com/mrwolf/hallmark-server/internal/lexicon"
	"github.com/mrwolf/hallmark-server/internal/logger"
	"github.com/mrwolf/hallmark-server/internal/plot"
	"github.com/mrwolf/hallmark-server/internal/sampler"
	"github.com/mrwolf/hallmark-server/internal/selection"
)

const (
	OriginalTitle     = "Every Single Hallmark Movie"
	OriginalImageName = "original"

	topicPlaceholder = compose.OpenTag + "topic" + compose.CloseTag
)

var (
	// FallbackImages are used when the lexicon cannot list any images.
	FallbackImages = []string{"default0.png", "default1.png", "default2.png"}
	// FallbackTitles are used when the lexicon cannot list any titles.
	FallbackTitles = []string{"Every Cloud Has A Silver Lining", "Learning And Loving", "Our Meaning Is What We Make"}
)

// Movie is one generated plot with its candidate images and titles, best
// first.
type Movie struct {
	Plot   string
	Images []string
	Titles []string
}

// imageSlot is a plot slot that can have its own illustration.
type imageSlot struct {
	key   plot.Key
	match lexicon.MatchMode
}

// imageSlots are checked in priority order. Job and lifeguide values carry
// an article and adjectives, so they match on contained words.
var imageSlots = []imageSlot{
	{plot.KeyOverride, lexicon.MatchExact},
	{plot.KeyMainChar, lexicon.MatchExact},
	{plot.KeyLifeguide, lexicon.MatchContained},
	{plot.KeyTopic, lexicon.MatchExact},
	{plot.KeyJobDesc, lexicon.MatchContained},
}

type Generator struct {
	store    lexicon.Store
	resolver *grammar.Resolver
	rng      sampler.Rand
	log      *logger.Logger
}

func New(store lexicon.Store, rng sampler.Rand, log *logger.Logger) *Generator {
	return &Generator{
		store:    store,
		resolver: grammar.NewResolver(store, rng, log),
		rng:      rng,
		log:      log,
	}
}

// Generate resolves a fresh set of plot variables and builds a movie from
// them. With wantOriginal set it returns the canonical Hallmark plot.
// Lookup failures only degrade the result.
func (g *Generator) Generate(wantOriginal bool) Movie {
	v := g.resolver.ResolveAll(wantOriginal)

	return Movie{
		Plot:   g.composePlot(v),
		Images: g.images(v),
		Titles: g.titles(v),
	}
}

// Batch generates n movies and gives each an image and title, avoiding
// repeats within the batch where the candidates allow.
func (g *Generator) Batch(n int) []selection.Pick {
	candidates := make([]selection.Candidate, n)
	for i := range candidates {
		m := g.Generate(false)
		candidates[i] = selection.Candidate{Plot: m.Plot, Images: m.Images, Titles: m.Titles}
	}
	return selection.Select(candidates)
}

func (g *Generator) composePlot(v plot.Variables) string {
	if v.Original {
		return compose.Tidy(plot.BasePlot)
	}
	return compose.Compose(plot.BasePlot, plot.SlotOrder, v)
}

// images ranks the illustrations for v. A slot contributes only when its
// value matches exactly one image, and a file is listed once. The generic
// default images follow.
func (g *Generator) images(v plot.Variables) []string {
	if v.Original {
		img, err := g.store.ImageByName(OriginalImageName)
		if err != nil {
			g.log.Warn("original image lookup failed", "error", err)
			return append([]string(nil), FallbackImages...)
		}
		return []string{img.File()}
	}

	var ranked []string
	for _, slot := range imageSlots {
		value := strings.TrimSpace(v.Lookup(slot.key).Value)
		if value == "" {
			continue
		}
		matches, err := g.store.ImagesFor(value, slot.match)
		if err != nil {
			g.log.Warn("image lookup failed", "slot", slot.key, "error", err)
			break
		}
		if len(matches) == 1 && !slices.Contains(ranked, matches[0].File()) {
			ranked = append(ranked, matches[0].File())
		}
	}

	defaults, err := g.store.DefaultImages()
	if err != nil {
		g.log.Warn("default image lookup failed", "error", err)
		return append(ranked, FallbackImages...)
	}
	for _, img := range defaults {
		ranked = append(ranked, img.File())
	}
	return ranked
}

// titles lists every title template triggered by v, with the topic filled
// in, title cased and shuffled.
func (g *Generator) titles(v plot.Variables) []string {
	if v.Original {
		return []string{OriginalTitle}
	}

	templates, err := g.store.TitleTemplatesMatching(
		v.Hometown.Value,
		strings.TrimSpace(v.Override.Value),
		v.Lifeguide.Value,
	)
	if err != nil {
		g.log.Warn("title lookup failed", "error", err)
		return append([]string(nil), FallbackTitles...)
	}

	titles := FillTitles(templates, v.Topic.Or(plot.DefaultTopic))
	sampler.Shuffle(g.rng, titles)
	return titles
}

// FillTitles replaces the topic placeholder in each template and title
// cases the result.
func FillTitles(templates []string, topic string) []string {
	caser := cases.Title(language.English)
	titles := make([]string, len(templates))
	for i, t := range templates {
		titles[i] = caser.String(strings.ReplaceAll(t, topicPlaceholder, topic))
	}
	return titles
}
