package lexicon

import (
	"database/sql"
	"errors"
	"fmt"
)

// NameTable identifies the tables holding plain (id, name) rows. Table names
// only ever come from this enum, never from caller strings.
type NameTable int

const (
	Categories NameTable = iota
	Infinitives
	PronounGroups
	ChoiceGroups
)

func (t NameTable) String() string {
	switch t {
	case Categories:
		return "categories"
	case Infinitives:
		return "infinitives"
	case PronounGroups:
		return "pronoun_groups"
	case ChoiceGroups:
		return "choice_groups"
	}
	return fmt.Sprintf("NameTable(%d)", int(t))
}

func (t NameTable) valid() bool {
	return t >= Categories && t <= ChoiceGroups
}

// Tx is a write transaction used while importing source data.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a write transaction.
func (db *DB) Begin() (*Tx, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (tx *Tx) Commit() error {
	return tx.tx.Commit()
}

func (tx *Tx) Rollback() error {
	return tx.tx.Rollback()
}

// NameID returns the id for name in table, or ErrNotFound.
func (tx *Tx) NameID(table NameTable, name string) (int64, error) {
	if !table.valid() {
		return 0, fmt.Errorf("unknown name table %v", table)
	}
	var id int64
	err := tx.tx.QueryRow(`SELECT id FROM `+table.String()+` WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

// EnsureName returns the id for name in table, inserting it when missing.
// created reports whether a row was added.
func (tx *Tx) EnsureName(table NameTable, name string) (id int64, created bool, err error) {
	if !table.valid() {
		return 0, false, fmt.Errorf("unknown name table %v", table)
	}
	created, err = tx.insertIgnore(`INSERT OR IGNORE INTO `+table.String()+` (name) VALUES (?)`, name)
	if err != nil {
		return 0, false, fmt.Errorf("inserting %q into %s: %w", name, table, err)
	}
	id, err = tx.NameID(table, name)
	return id, created, err
}

// WordID returns the id of the first word with this display text.
func (tx *Tx) WordID(display string) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(`SELECT id FROM words WHERE display = ? ORDER BY id LIMIT 1`, display).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

// EnsureWord returns the id of display, adding it to category (which is
// created too if needed) when no word with that text exists yet.
func (tx *Tx) EnsureWord(display, category string) (int64, error) {
	id, err := tx.WordID(display)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	if _, err := tx.AddWord(category, display); err != nil {
		return 0, err
	}
	return tx.WordID(display)
}

// AddWord adds display to category unless that pair already exists.
func (tx *Tx) AddWord(category, display string) (bool, error) {
	categoryID, _, err := tx.EnsureName(Categories, category)
	if err != nil {
		return false, err
	}
	return tx.insertIgnore(`INSERT OR IGNORE INTO words (category_id, display) VALUES (?, ?)`, categoryID, display)
}

func (tx *Tx) AddPronounGroupMember(groupID, pronounID int64) (bool, error) {
	return tx.insertIgnore(`INSERT OR IGNORE INTO pronoun_group_members (group_id, pronoun_id) VALUES (?, ?)`, groupID, pronounID)
}

func (tx *Tx) AddPronounSet(subjectID, objectID int64) (bool, error) {
	return tx.insertIgnore(`INSERT OR IGNORE INTO pronoun_sets (subject_id, object_id) VALUES (?, ?)`, subjectID, objectID)
}

func (tx *Tx) AddVerb(infinitiveID, groupID, resultID int64) (bool, error) {
	return tx.insertIgnore(`
		INSERT OR IGNORE INTO verbs (infinitive_id, pronoun_group_id, result_id) VALUES (?, ?, ?)
	`, infinitiveID, groupID, resultID)
}

func (tx *Tx) AddCharacterPronoun(characterID, pronounID int64) (bool, error) {
	return tx.insertIgnore(`INSERT OR IGNORE INTO character_pronouns (character_id, pronoun_id) VALUES (?, ?)`, characterID, pronounID)
}

func (tx *Tx) AddCharacterHometown(characterID, locationID int64) (bool, error) {
	return tx.insertIgnore(`INSERT OR IGNORE INTO character_hometowns (character_id, location_id) VALUES (?, ?)`, characterID, locationID)
}

// NewProbability describes a probabilities row. Zero ids and empty strings
// are stored as NULL.
type NewProbability struct {
	Weight     float64
	WordID     int64
	CategoryID int64
	Prefix     string
	Note       string
}

// AddProbability inserts one weighted alternative into a choice group.
func (tx *Tx) AddProbability(groupID int64, p NewProbability) (int64, error) {
	result, err := tx.tx.Exec(`
		INSERT INTO probabilities (choice_group_id, probability, word_id, category_id, prefix, note)
		VALUES (?, ?, ?, ?, ?, ?)
	`, groupID, p.Weight, nullID(p.WordID), nullID(p.CategoryID), nullString(p.Prefix), nullString(p.Note))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (tx *Tx) AddImage(img Image) (bool, error) {
	return tx.insertIgnore(`
		INSERT OR IGNORE INTO images (name, filename, extension) VALUES (?, ?, ?)
	`, img.Name, img.Filename, img.Extension)
}

// ImageID returns the id of the image record called name.
func (tx *Tx) ImageID(name string) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(`SELECT id FROM images WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

func (tx *Tx) AddWordImage(wordID, imageID int64) (bool, error) {
	return tx.insertIgnore(`INSERT OR IGNORE INTO word_images (word_id, image_id) VALUES (?, ?)`, wordID, imageID)
}

// EnsureTitleTemplate returns the id of template, inserting it when missing.
func (tx *Tx) EnsureTitleTemplate(template string) (id int64, created bool, err error) {
	created, err = tx.insertIgnore(`INSERT OR IGNORE INTO title_templates (template) VALUES (?)`, template)
	if err != nil {
		return 0, false, err
	}
	err = tx.tx.QueryRow(`SELECT id FROM title_templates WHERE template = ?`, template).Scan(&id)
	return id, created, err
}

func (tx *Tx) AddWordTitle(wordID, templateID int64) (bool, error) {
	return tx.insertIgnore(`INSERT OR IGNORE INTO word_titles (word_id, template_id) VALUES (?, ?)`, wordID, templateID)
}

func (tx *Tx) insertIgnore(query string, args ...interface{}) (bool, error) {
	result, err := tx.tx.Exec(query, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
