package lexicon

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS words (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    category_id INTEGER NOT NULL REFERENCES categories(id),
    display TEXT NOT NULL,
    UNIQUE (category_id, display)
);

CREATE TABLE IF NOT EXISTS infinitives (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL
);

-- Subject pronouns that conjugate alike, e.g. she/he/it
CREATE TABLE IF NOT EXISTS pronoun_groups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS pronoun_group_members (
    group_id INTEGER NOT NULL REFERENCES pronoun_groups(id),
    pronoun_id INTEGER NOT NULL REFERENCES words(id),
    PRIMARY KEY (group_id, pronoun_id)
);

CREATE TABLE IF NOT EXISTS pronoun_sets (
    subject_id INTEGER NOT NULL REFERENCES words(id),
    object_id INTEGER NOT NULL REFERENCES words(id),
    PRIMARY KEY (subject_id, object_id)
);

CREATE TABLE IF NOT EXISTS verbs (
    infinitive_id INTEGER NOT NULL REFERENCES infinitives(id),
    pronoun_group_id INTEGER NOT NULL REFERENCES pronoun_groups(id),
    result_id INTEGER NOT NULL REFERENCES words(id),
    PRIMARY KEY (infinitive_id, pronoun_group_id, result_id)
);

CREATE TABLE IF NOT EXISTS character_pronouns (
    character_id INTEGER NOT NULL REFERENCES words(id),
    pronoun_id INTEGER NOT NULL REFERENCES words(id),
    PRIMARY KEY (character_id, pronoun_id)
);

CREATE TABLE IF NOT EXISTS character_hometowns (
    character_id INTEGER NOT NULL REFERENCES words(id),
    location_id INTEGER NOT NULL REFERENCES words(id),
    PRIMARY KEY (character_id, location_id)
);

CREATE TABLE IF NOT EXISTS choice_groups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL
);

-- One weighted alternative; word_id, category_id and prefix are all optional
CREATE TABLE IF NOT EXISTS probabilities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    choice_group_id INTEGER NOT NULL REFERENCES choice_groups(id),
    probability REAL NOT NULL,
    word_id INTEGER REFERENCES words(id),
    category_id INTEGER REFERENCES categories(id),
    prefix TEXT,
    note TEXT
);

CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    filename TEXT NOT NULL,
    extension TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS word_images (
    word_id INTEGER NOT NULL REFERENCES words(id),
    image_id INTEGER NOT NULL REFERENCES images(id),
    PRIMARY KEY (word_id, image_id)
);

CREATE TABLE IF NOT EXISTS title_templates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    template TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS word_titles (
    word_id INTEGER NOT NULL REFERENCES words(id),
    template_id INTEGER NOT NULL REFERENCES title_templates(id),
    PRIMARY KEY (word_id, template_id)
);

CREATE INDEX IF NOT EXISTS idx_words_display ON words(display);
CREATE INDEX IF NOT EXISTS idx_probabilities_group ON probabilities(choice_group_id);
`

type DB struct {
	conn *sql.DB
}

// Open opens (creating if needed) a writable lexicon database.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// OpenReadOnly opens an existing lexicon database for serving.
func OpenReadOnly(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{conn: conn}, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection is still usable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

const lexemeColumns = `w.id, w.display, w.category_id`

// LexemesByCategory returns every word in the named category
func (db *DB) LexemesByCategory(category string) ([]Lexeme, error) {
	return db.queryLexemes(`
		SELECT `+lexemeColumns+` FROM words w
		JOIN categories c ON c.id = w.category_id
		WHERE c.name = ?
		ORDER BY w.id
	`, category)
}

// LexemeByID returns a single word
func (db *DB) LexemeByID(id int64) (Lexeme, error) {
	return db.queryLexeme(`SELECT `+lexemeColumns+` FROM words w WHERE w.id = ?`, id)
}

// CharacterCandidates returns words that can play the main character
func (db *DB) CharacterCandidates(categories []string) ([]Lexeme, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categories)), ",")
	args := make([]interface{}, len(categories))
	for i, c := range categories {
		args[i] = c
	}

	return db.queryLexemes(`
		SELECT DISTINCT `+lexemeColumns+` FROM words w
		JOIN character_pronouns cp ON cp.character_id = w.id
		JOIN character_hometowns ch ON ch.character_id = w.id
		JOIN categories c ON c.id = w.category_id
		WHERE c.name IN (`+placeholders+`)
		ORDER BY w.id
	`, args...)
}

// PronounOptions returns the subject pronouns allowed for a character
func (db *DB) PronounOptions(entityID int64) ([]Lexeme, error) {
	return db.queryLexemes(`
		SELECT `+lexemeColumns+` FROM words w
		JOIN character_pronouns cp ON cp.pronoun_id = w.id
		WHERE cp.character_id = ?
		ORDER BY w.id
	`, entityID)
}

// HometownOptions returns the hometowns allowed for a character
func (db *DB) HometownOptions(entityID int64) ([]Lexeme, error) {
	return db.queryLexemes(`
		SELECT `+lexemeColumns+` FROM words w
		JOIN character_hometowns ch ON ch.location_id = w.id
		WHERE ch.character_id = ?
		ORDER BY w.id
	`, entityID)
}

// ObjectPronoun returns the object pronoun paired with a subject pronoun
func (db *DB) ObjectPronoun(subject string) (Lexeme, error) {
	return db.queryLexeme(`
		SELECT `+lexemeColumns+` FROM words w
		JOIN pronoun_sets ps ON ps.object_id = w.id
		JOIN words ws ON ws.id = ps.subject_id
		WHERE ws.display = ?
		LIMIT 1
	`, subject)
}

// Conjugate returns the form of infinitive used with subject
func (db *DB) Conjugate(infinitive, subject string) (Lexeme, error) {
	return db.queryLexeme(`
		SELECT `+lexemeColumns+` FROM words w
		JOIN verbs v ON v.result_id = w.id
		JOIN infinitives i ON i.id = v.infinitive_id
		JOIN pronoun_group_members pgm ON pgm.group_id = v.pronoun_group_id
		JOIN words wp ON wp.id = pgm.pronoun_id
		WHERE i.name = ? AND wp.display = ?
		LIMIT 1
	`, infinitive, subject)
}

// ChoiceGroupRecords returns the weighted alternatives of a choice group
func (db *DB) ChoiceGroupRecords(group string) ([]ProbabilityRecord, error) {
	rows, err := db.conn.Query(`
		SELECT p.id, p.probability, p.word_id, c.name, p.prefix, p.note
		FROM probabilities p
		JOIN choice_groups cg ON cg.id = p.choice_group_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE cg.name = ?
		ORDER BY p.id
	`, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ProbabilityRecord
	for rows.Next() {
		var r ProbabilityRecord
		var wordID sql.NullInt64
		var category, prefix, note sql.NullString
		if err := rows.Scan(&r.ID, &r.Weight, &wordID, &category, &prefix, &note); err != nil {
			return nil, err
		}
		r.WordID = wordID.Int64
		r.Category = category.String
		r.Prefix = prefix.String
		r.Note = note.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// ImagesFor returns images linked to words matching value
func (db *DB) ImagesFor(value string, match MatchMode) ([]Image, error) {
	query := `SELECT i.name, i.filename, i.extension FROM images i
		JOIN word_images wi ON wi.image_id = i.id
		JOIN words w ON w.id = wi.word_id`
	switch match {
	case MatchContained:
		query += ` WHERE INSTR(?, w.display) > 0`
	default:
		query += ` WHERE w.display = ?`
	}
	query += ` GROUP BY i.id ORDER BY i.id`

	return db.queryImages(query, value)
}

// ImageByName returns the image with the given record name
func (db *DB) ImageByName(name string) (Image, error) {
	var img Image
	err := db.conn.QueryRow(`
		SELECT name, filename, extension FROM images WHERE name = ?
	`, name).Scan(&img.Name, &img.Filename, &img.Extension)
	if errors.Is(err, sql.ErrNoRows) {
		return Image{}, ErrNotFound
	}
	return img, err
}

// DefaultImages returns the generic images in name order
func (db *DB) DefaultImages() ([]Image, error) {
	return db.queryImages(`
		SELECT name, filename, extension FROM images
		WHERE name LIKE ? || '%'
		ORDER BY name
	`, DefaultImagePrefix)
}

// TitleTemplatesMatching returns title templates with no trigger word, or
// whose trigger matches the hometown, the override entity, or appears in
// the lifeguide text.
func (db *DB) TitleTemplatesMatching(hometown, override, lifeguide string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT t.id, t.template FROM title_templates t
		LEFT JOIN word_titles wt ON wt.template_id = t.id
		LEFT JOIN words w ON w.id = wt.word_id
		WHERE w.display IS NULL
		   OR w.display = ?
		   OR w.display = ?
		   OR (? != '' AND INSTR(?, w.display) > 0)
		ORDER BY t.id
	`, hometown, override, lifeguide, lifeguide)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []string
	for rows.Next() {
		var id int64
		var tmpl string
		if err := rows.Scan(&id, &tmpl); err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func (db *DB) queryLexeme(query string, args ...interface{}) (Lexeme, error) {
	var l Lexeme
	err := db.conn.QueryRow(query, args...).Scan(&l.ID, &l.Display, &l.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return Lexeme{}, ErrNotFound
	}
	return l, err
}

func (db *DB) queryLexemes(query string, args ...interface{}) ([]Lexeme, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lexemes []Lexeme
	for rows.Next() {
		var l Lexeme
		if err := rows.Scan(&l.ID, &l.Display, &l.CategoryID); err != nil {
			return nil, err
		}
		lexemes = append(lexemes, l)
	}
	return lexemes, rows.Err()
}

func (db *DB) queryImages(query string, args ...interface{}) ([]Image, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Name, &img.Filename, &img.Extension); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
