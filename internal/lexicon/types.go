package lexicon

import "errors"

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("lexicon: not found")

// Lexeme is one categorised piece of display text.
type Lexeme struct {
	ID         int64
	Display    string
	CategoryID int64
}

// ProbabilityRecord is one weighted alternative in a choice group.
type ProbabilityRecord struct {
	ID       int64
	Weight   float64
	WordID   int64  // 0 when the record does not name a word
	Category string // empty when the record does not name a category
	Prefix   string // optional prefix template, e.g. "#[adjective]# talking"
	Note     string
}

// HasWord reports whether the record points straight at a word.
func (r ProbabilityRecord) HasWord() bool {
	return r.WordID != 0
}

// Image is an illustration that can be shown next to a plot.
type Image struct {
	Name      string
	Filename  string
	Extension string
}

// File returns the file name with its extension.
func (i Image) File() string {
	return i.Filename + "." + i.Extension
}

// MatchMode controls how ImagesFor compares a value to word text.
type MatchMode int

const (
	// MatchExact requires the word text to equal the value.
	MatchExact MatchMode = iota
	// MatchContained requires the word text to appear inside the value.
	MatchContained
)

// DefaultImagePrefix marks generic images usable for any plot.
const DefaultImagePrefix = "default"

// Store is the read side of the lexicon used during generation.
type Store interface {
	LexemesByCategory(category string) ([]Lexeme, error)
	LexemeByID(id int64) (Lexeme, error)
	// CharacterCandidates lists words in one of categories that have at
	// least one pronoun and one hometown.
	CharacterCandidates(categories []string) ([]Lexeme, error)
	PronounOptions(entityID int64) ([]Lexeme, error)
	HometownOptions(entityID int64) ([]Lexeme, error)
	ObjectPronoun(subject string) (Lexeme, error)
	Conjugate(infinitive, subject string) (Lexeme, error)
	ChoiceGroupRecords(group string) ([]ProbabilityRecord, error)
	ImagesFor(value string, match MatchMode) ([]Image, error)
	ImageByName(name string) (Image, error)
	DefaultImages() ([]Image, error)
	TitleTemplatesMatching(hometown, override, lifeguide string) ([]string, error)
	Ping() error
}
