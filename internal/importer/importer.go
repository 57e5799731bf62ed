// Package importer loads lexicon source files into the lexicon database.
//
// A source file is split into sections by lines of the form "#name". Inside a
// section, "~name" lines open a group and tab-indented lines carry rows that
// belong to the open group. Blank lines are ignored and every insert is
// idempotent, so a file can be imported repeatedly.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mrwolf/hallmark-server/internal/lexicon"
	"github.com/mrwolf/hallmark-server/internal/logger"
)

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrMalformedLine  = errors.New("malformed line")
	ErrMissing        = errors.New("missing prerequisite")
)

// Section names recognised after a leading '#'.
const (
	SectionInfinitives         = "infinitives"
	SectionPronounGroupMembers = "pronounGroupMembers"
	SectionWords               = "words"
	SectionPronounSets         = "pronounSets"
	SectionVerbs               = "verbs"
	SectionCharacterSettings   = "characterSettings"
	SectionProbabilities       = "probabilities"
	SectionImages              = "images"
	SectionWordsToImages       = "wordsToImages"
	SectionTitleTemplates      = "titleTemplates"
)

// Stats counts rows written and rows that already existed.
type Stats struct {
	Added   int
	Skipped int
}

func (s *Stats) record(added bool) {
	if added {
		s.Added++
	} else {
		s.Skipped++
	}
}

type Importer struct {
	db  *lexicon.DB
	log *logger.Logger
}

func New(db *lexicon.DB, log *logger.Logger) *Importer {
	return &Importer{db: db, log: log}
}

// ImportFile imports one source file in a single transaction.
func (im *Importer) ImportFile(path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	stats, err := im.ImportReader(f)
	if err != nil {
		return stats, fmt.Errorf("importing %s: %w", path, err)
	}
	return stats, nil
}

// ImportReader imports source data from r in a single transaction. Nothing
// is committed if any line fails.
func (im *Importer) ImportReader(r io.Reader) (Stats, error) {
	tx, err := im.db.Begin()
	if err != nil {
		return Stats{}, err
	}
	defer tx.Rollback()

	p := &parser{tx: tx, log: im.log}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := p.line(line); err != nil {
			return p.stats, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return p.stats, fmt.Errorf("reading source: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return p.stats, fmt.Errorf("committing import: %w", err)
	}
	im.log.Info("import finished", "added", p.stats.Added, "skipped", p.stats.Skipped)
	return p.stats, nil
}

// parser holds the state carried between lines of one import.
type parser struct {
	tx    *lexicon.Tx
	log   *logger.Logger
	stats Stats

	section string
	// group is the text of the last "~" line in the current section.
	group   string
	groupID int64
	// skipGroup is set while an already imported probability group is read.
	skipGroup bool
	// characterID is the character whose settings rows follow.
	characterID int64
}

func (p *parser) line(line string) error {
	if strings.HasPrefix(line, "#") {
		return p.switchSection(strings.TrimSpace(line[1:]))
	}

	switch p.section {
	case SectionInfinitives:
		return p.infinitive(line)
	case SectionPronounGroupMembers:
		return p.pronounGroupMember(line)
	case SectionWords:
		return p.word(line)
	case SectionPronounSets:
		return p.pronounSet(line)
	case SectionVerbs:
		return p.verb(line)
	case SectionCharacterSettings:
		return p.characterSetting(line)
	case SectionProbabilities:
		return p.probability(line)
	case SectionImages:
		return p.image(line)
	case SectionWordsToImages:
		return p.wordImage(line)
	case SectionTitleTemplates:
		return p.titleTemplate(line)
	}
	return fmt.Errorf("%w: data before any section header", ErrMalformedLine)
}

func (p *parser) switchSection(name string) error {
	switch name {
	case SectionInfinitives, SectionPronounGroupMembers, SectionWords, SectionPronounSets,
		SectionVerbs, SectionCharacterSettings, SectionProbabilities, SectionImages,
		SectionWordsToImages, SectionTitleTemplates:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	if p.section != "" {
		p.log.Debug("finished section", "section", p.section)
	}
	p.section = name
	p.group, p.groupID, p.skipGroup, p.characterID = "", 0, false, 0
	return nil
}

func (p *parser) added(what string, added bool) {
	p.stats.record(added)
	if added {
		p.log.Debug("added", "section", p.section, "value", what)
	}
}

func (p *parser) infinitive(line string) error {
	_, created, err := p.tx.EnsureName(lexicon.Infinitives, line)
	if err != nil {
		return err
	}
	p.added(line, created)
	return nil
}

// ~she/he/it
//
//	p=she,he,it
func (p *parser) pronounGroupMember(line string) error {
	if name, ok := header(line); ok {
		id, created, err := p.tx.EnsureName(lexicon.PronounGroups, name)
		if err != nil {
			return err
		}
		p.added(name, created)
		p.group, p.groupID = name, id
		return nil
	}

	if p.groupID == 0 {
		return fmt.Errorf("%w: pronoun list outside a group", ErrMalformedLine)
	}
	key, list, ok := setting(strings.TrimPrefix(line, "\t"))
	if !ok || key != "p" {
		return fmt.Errorf("%w: want p=pronoun,... got %q", ErrMalformedLine, line)
	}
	for _, pronoun := range list {
		pronounID, err := p.existingWord(pronoun, "pronoun")
		if err != nil {
			return err
		}
		added, err := p.tx.AddPronounGroupMember(p.groupID, pronounID)
		if err != nil {
			return err
		}
		p.added(pronoun+" in "+p.group, added)
	}
	return nil
}

// ~category followed by one word per line.
func (p *parser) word(line string) error {
	if name, ok := header(line); ok {
		p.group = name
		return nil
	}
	if p.group == "" {
		return fmt.Errorf("%w: word %q before any ~category", ErrMalformedLine, line)
	}
	display := strings.TrimSpace(line)
	added, err := p.tx.AddWord(p.group, display)
	if err != nil {
		return err
	}
	p.added(display+" in "+p.group, added)
	return nil
}

// she,her
func (p *parser) pronounSet(line string) error {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 2 {
		return fmt.Errorf("%w: want subject,object got %q", ErrMalformedLine, line)
	}
	subjectID, err := p.tx.EnsureWord(parts[0], "pronoun")
	if err != nil {
		return err
	}
	objectID, err := p.tx.EnsureWord(parts[1], "pronoun")
	if err != nil {
		return err
	}
	added, err := p.tx.AddPronounSet(subjectID, objectID)
	if err != nil {
		return err
	}
	p.added(parts[0]+"/"+parts[1], added)
	return nil
}

// ~to work
//
//	she/he/it=works
func (p *parser) verb(line string) error {
	if name, ok := header(line); ok {
		id, err := p.tx.NameID(lexicon.Infinitives, name)
		if errors.Is(err, lexicon.ErrNotFound) {
			return fmt.Errorf("%w: infinitive %q", ErrMissing, name)
		}
		if err != nil {
			return err
		}
		p.group, p.groupID = name, id
		return nil
	}

	if p.groupID == 0 {
		return fmt.Errorf("%w: conjugation outside an infinitive", ErrMalformedLine)
	}
	group, result, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok || group == "" || result == "" {
		return fmt.Errorf("%w: want group=verb got %q", ErrMalformedLine, line)
	}
	groupID, err := p.tx.NameID(lexicon.PronounGroups, group)
	if errors.Is(err, lexicon.ErrNotFound) {
		return fmt.Errorf("%w: pronoun group %q", ErrMissing, group)
	}
	if err != nil {
		return err
	}
	resultID, err := p.tx.EnsureWord(result, "verb")
	if err != nil {
		return err
	}
	added, err := p.tx.AddVerb(p.groupID, groupID, resultID)
	if err != nil {
		return err
	}
	p.added(p.group+" + "+group+" = "+result, added)
	return nil
}

// woman
//
//	p=she	h=small town,village
func (p *parser) characterSetting(line string) error {
	if !strings.HasPrefix(line, "\t") {
		name := strings.TrimSpace(line)
		id, err := p.existingWord(name, "character")
		if err != nil {
			return err
		}
		p.group, p.characterID = name, id
		return nil
	}

	if p.characterID == 0 {
		return fmt.Errorf("%w: settings before any character", ErrMalformedLine)
	}
	for _, field := range strings.Split(strings.TrimPrefix(line, "\t"), "\t") {
		key, list, ok := setting(field)
		if !ok {
			return fmt.Errorf("%w: bad setting %q", ErrMalformedLine, field)
		}
		for _, value := range list {
			var added bool
			switch key {
			case "p":
				pronounID, err := p.existingWord(value, "pronoun")
				if err != nil {
					return err
				}
				if added, err = p.tx.AddCharacterPronoun(p.characterID, pronounID); err != nil {
					return err
				}
			case "h":
				locationID, err := p.tx.EnsureWord(value, "location")
				if err != nil {
					return err
				}
				if added, err = p.tx.AddCharacterHometown(p.characterID, locationID); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unknown character setting %q", ErrMalformedLine, key)
			}
			p.added(p.group+" "+key+"="+value, added)
		}
	}
	return nil
}

// ~mainChar
//
//	0.85	w=woman
//	0.10	c=animal	p=#[adjective]# talking	n=any talking animal
//
// A group that already exists is skipped entirely.
func (p *parser) probability(line string) error {
	if name, ok := header(line); ok {
		p.group = name
		_, err := p.tx.NameID(lexicon.ChoiceGroups, name)
		switch {
		case err == nil:
			p.skipGroup, p.groupID = true, 0
			p.log.Info("choice group already imported, skipping", "group", name)
			return nil
		case !errors.Is(err, lexicon.ErrNotFound):
			return err
		}
		id, _, err := p.tx.EnsureName(lexicon.ChoiceGroups, name)
		if err != nil {
			return err
		}
		p.skipGroup, p.groupID = false, id
		return nil
	}

	if p.skipGroup {
		p.stats.record(false)
		return nil
	}
	if p.groupID == 0 {
		return fmt.Errorf("%w: probability outside a choice group", ErrMalformedLine)
	}

	fields := strings.Split(strings.TrimPrefix(line, "\t"), "\t")
	weight, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return fmt.Errorf("%w: bad probability %q", ErrMalformedLine, fields[0])
	}

	rec := lexicon.NewProbability{Weight: weight}
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return fmt.Errorf("%w: bad setting %q", ErrMalformedLine, field)
		}
		switch key {
		case "n":
			rec.Note = value
		case "p":
			rec.Prefix = value
		case "w":
			if rec.WordID, err = p.existingWord(value, "word"); err != nil {
				return err
			}
		case "c":
			rec.CategoryID, err = p.tx.NameID(lexicon.Categories, value)
			if errors.Is(err, lexicon.ErrNotFound) {
				return fmt.Errorf("%w: category %q", ErrMissing, value)
			}
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown probability setting %q", ErrMalformedLine, key)
		}
	}

	if _, err := p.tx.AddProbability(p.groupID, rec); err != nil {
		return err
	}
	p.added(fmt.Sprintf("%s %.2f", p.group, weight), true)
	return nil
}

// name,filename,extension
func (p *parser) image(line string) error {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 3 {
		return fmt.Errorf("%w: want name,filename,extension got %q", ErrMalformedLine, line)
	}
	added, err := p.tx.AddImage(lexicon.Image{Name: parts[0], Filename: parts[1], Extension: parts[2]})
	if err != nil {
		return err
	}
	p.added(parts[0], added)
	return nil
}

// word,image. Links to unknown words or images are skipped with a warning.
func (p *parser) wordImage(line string) error {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 2 {
		return fmt.Errorf("%w: want word,image got %q", ErrMalformedLine, line)
	}
	wordID, err := p.tx.WordID(parts[0])
	if err == nil {
		var imageID int64
		if imageID, err = p.tx.ImageID(parts[1]); err == nil {
			added, err := p.tx.AddWordImage(wordID, imageID)
			if err != nil {
				return err
			}
			p.added(parts[0]+" -> "+parts[1], added)
			return nil
		}
	}
	if !errors.Is(err, lexicon.ErrNotFound) {
		return err
	}
	p.log.Warn("skipping image link", "word", parts[0], "image", parts[1])
	p.stats.record(false)
	return nil
}

// Title template//trigger word. The trigger is optional but the separator
// is not. A trigger that names no word is skipped with a warning.
func (p *parser) titleTemplate(line string) error {
	parts := strings.Split(line, "//")
	if len(parts) != 2 || parts[0] == "" {
		return fmt.Errorf("%w: want template//trigger got %q", ErrMalformedLine, line)
	}
	template, trigger := parts[0], strings.TrimSpace(parts[1])

	templateID, created, err := p.tx.EnsureTitleTemplate(template)
	if err != nil {
		return err
	}
	p.added(template, created)
	if trigger == "" {
		return nil
	}

	wordID, err := p.tx.WordID(trigger)
	if errors.Is(err, lexicon.ErrNotFound) {
		p.log.Warn("skipping title trigger", "template", template, "trigger", trigger)
		return nil
	}
	if err != nil {
		return err
	}
	added, err := p.tx.AddWordTitle(wordID, templateID)
	if err != nil {
		return err
	}
	p.added(template+" <- "+trigger, added)
	return nil
}

func (p *parser) existingWord(display, kind string) (int64, error) {
	id, err := p.tx.WordID(display)
	if errors.Is(err, lexicon.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s %q", ErrMissing, kind, display)
	}
	return id, err
}

// header reports whether line opens a group, returning the group name.
func header(line string) (string, bool) {
	if !strings.HasPrefix(line, "~") {
		return "", false
	}
	return strings.TrimSpace(line[1:]), true
}

// setting splits "k=a,b,c" into its key and values.
func setting(field string) (string, []string, bool) {
	key, value, ok := strings.Cut(field, "=")
	if !ok || key == "" || value == "" {
		return "", nil, false
	}
	return key, strings.Split(value, ","), true
}
