// Package grammar resolves every plot slot to display text, keeping
// pronouns, verb forms and articles in agreement with the chosen character.
//
// Resolution never fails as a whole. A slot whose lookup errors or comes back
// empty is left unresolved and the plot keeps its original words there.
package grammar

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mrwolf/hallmark-server/internal/compose"
	"github.com/mrwolf/hallmark-server/internal/lexicon"
	"github.com/mrwolf/hallmark-server/internal/logger"
	"github.com/mrwolf/hallmark-server/internal/plot"
	"github.com/mrwolf/hallmark-server/internal/sampler"
)

// Choice groups read from the lexicon.
const (
	GroupMainChar  = "mainChar"
	GroupOverride  = "toBeeOrNotToBee"
	GroupJobDesc   = "jobDesc"
	GroupLifeguide = "lifeguide"
)

const (
	InfinitiveWork = "to work"
	InfinitiveMeet = "to meet"

	CategoryTopic = "topic"
)

// CharacterCategories are the categories a main character may come from
// when the mainChar group picks "any eligible character".
var CharacterCategories = []string{"humanoid", "animal", "inanimate"}

const vowels = "aeiou"

type Resolver struct {
	store lexicon.Store
	rng   sampler.Rand
	log   *logger.Logger
}

func NewResolver(store lexicon.Store, rng sampler.Rand, log *logger.Logger) *Resolver {
	return &Resolver{store: store, rng: rng, log: log}
}

// ResolveAll picks a value for every plot slot. With wantOriginal set it
// resolves nothing and returns variables marked Original.
//
// The main character is settled first. When the override group picks a word,
// that word drives pronouns, verbs and hometown while the main character is
// still reported. The override value carries a trailing space because it
// runs straight into the next word of the plot.
func (r *Resolver) ResolveAll(wantOriginal bool) plot.Variables {
	if wantOriginal {
		return plot.Variables{Original: true}
	}

	var v plot.Variables

	active, activeOK := r.mainCharacter()
	if activeOK {
		v.MainChar = plot.Some(active.Display)
	}
	if override, ok := r.override(); ok {
		v.Override = plot.Some(override.Display + " ")
		active, activeOK = override, true
	}

	if activeOK {
		pronouns, err := r.store.PronounOptions(active.ID)
		v.PronounSubj = r.pickDisplay(plot.KeyPronounSubj, pronouns, err)
		hometowns, err := r.store.HometownOptions(active.ID)
		v.Hometown = r.pickDisplay(plot.KeyHometown, hometowns, err)
	}
	if v.PronounSubj.OK {
		subject := v.PronounSubj.Value
		v.PronounObj = r.single(plot.KeyPronounObj, func() (lexicon.Lexeme, error) {
			return r.store.ObjectPronoun(subject)
		})
		v.Works = r.single(plot.KeyWorks, func() (lexicon.Lexeme, error) {
			return r.store.Conjugate(InfinitiveWork, subject)
		})
		v.Meets = r.single(plot.KeyMeets, func() (lexicon.Lexeme, error) {
			return r.store.Conjugate(InfinitiveMeet, subject)
		})
	}

	v.JobDesc = r.jobDescription()
	v.Lifeguide = r.lifeguide()
	topics, err := r.store.LexemesByCategory(CategoryTopic)
	v.Topic = r.pickDisplay(plot.KeyTopic, topics, err)

	return v
}

// Article returns "an" when s starts with a vowel once tag markers and
// surrounding space are removed, and "a" otherwise.
func Article(s string) string {
	s = strings.TrimSpace(compose.StripTags(s))
	first, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsLetter(first) {
		return "a"
	}
	if strings.ContainsRune(vowels, unicode.ToLower(first)) {
		return "an"
	}
	return "a"
}

// WithArticle prefixes phrase with its article.
func WithArticle(phrase string) string {
	return Article(phrase) + " " + phrase
}

func (r *Resolver) mainCharacter() (lexicon.Lexeme, bool) {
	rec, ok := r.pickRecord(GroupMainChar)
	if !ok {
		return lexicon.Lexeme{}, false
	}
	if rec.HasWord() {
		return r.lexeme(plot.KeyMainChar, rec.WordID)
	}

	candidates, err := r.store.CharacterCandidates(CharacterCategories)
	if err != nil {
		r.unresolved(plot.KeyMainChar, err)
		return lexicon.Lexeme{}, false
	}
	return sampler.Uniform(r.rng, candidates)
}

func (r *Resolver) override() (lexicon.Lexeme, bool) {
	rec, ok := r.pickRecord(GroupOverride)
	if !ok || !rec.HasWord() {
		return lexicon.Lexeme{}, false
	}
	return r.lexeme(plot.KeyOverride, rec.WordID)
}

func (r *Resolver) jobDescription() plot.Text {
	rec, ok := r.pickRecord(GroupJobDesc)
	if !ok || !rec.HasWord() {
		return plot.None()
	}
	job, ok := r.lexeme(plot.KeyJobDesc, rec.WordID)
	if !ok || job.Display == "" {
		return plot.None()
	}
	return plot.Some(WithArticle(job.Display))
}

// lifeguide builds "<article> <prefix> <word>", where the prefix is an
// optional tagged phrase such as "#[adjective]# talking".
func (r *Resolver) lifeguide() plot.Text {
	rec, ok := r.pickRecord(GroupLifeguide)
	if !ok || rec.Category == "" {
		return plot.None()
	}

	guides, err := r.store.LexemesByCategory(rec.Category)
	word := r.pickDisplay(plot.KeyLifeguide, guides, err)
	if !word.OK {
		return plot.None()
	}

	prefix := compose.ExpandPrefix(rec.Prefix, r.wordFromCategory)
	phrase := strings.TrimSpace(prefix + " " + word.Value)
	return plot.Some(WithArticle(phrase))
}

func (r *Resolver) wordFromCategory(category string) (string, bool) {
	words, err := r.store.LexemesByCategory(category)
	if err != nil {
		r.log.Warn("prefix category lookup failed", "category", category, "error", err)
		return "", false
	}
	word, ok := sampler.Uniform(r.rng, words)
	return word.Display, ok
}

// pickRecord makes a weighted pick from a choice group.
func (r *Resolver) pickRecord(group string) (lexicon.ProbabilityRecord, bool) {
	records, err := r.store.ChoiceGroupRecords(group)
	if err != nil {
		r.log.Warn("choice group lookup failed", "group", group, "error", err)
		return lexicon.ProbabilityRecord{}, false
	}

	options := make([]sampler.Weighted, len(records))
	for i, rec := range records {
		options[i] = sampler.Weighted{ID: rec.ID, Weight: rec.Weight}
	}
	id, err := sampler.Pick(r.rng, options)
	if err != nil {
		r.log.Warn("weighted pick failed", "group", group, "error", err)
		return lexicon.ProbabilityRecord{}, false
	}

	for _, rec := range records {
		if rec.ID == id {
			return rec, true
		}
	}
	return lexicon.ProbabilityRecord{}, false
}

func (r *Resolver) lexeme(key plot.Key, id int64) (lexicon.Lexeme, bool) {
	l, err := r.store.LexemeByID(id)
	if err != nil {
		r.unresolved(key, err)
		return lexicon.Lexeme{}, false
	}
	return l, true
}

// pickDisplay chooses one lexeme uniformly and returns its text.
func (r *Resolver) pickDisplay(key plot.Key, options []lexicon.Lexeme, err error) plot.Text {
	if err != nil {
		r.unresolved(key, err)
		return plot.None()
	}
	l, ok := sampler.Uniform(r.rng, options)
	if !ok {
		r.log.Debug("no options for slot", "slot", key)
		return plot.None()
	}
	return plot.Some(l.Display)
}

func (r *Resolver) single(key plot.Key, lookup func() (lexicon.Lexeme, error)) plot.Text {
	l, err := lookup()
	if err != nil {
		r.unresolved(key, err)
		return plot.None()
	}
	return plot.Some(l.Display)
}

func (r *Resolver) unresolved(key plot.Key, err error) {
	r.log.Debug("slot unresolved", "slot", key, "error", err)
}
