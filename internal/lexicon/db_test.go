package lexicon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "lexicon-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	tmpFile.Close()

	db, err := Open(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("opening database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(tmpFile.Name())
	}

	return db, cleanup
}

// seed writes a tiny lexicon: a woman (she/her, small town) and a dragon
// (it/it, volcano), conjugations for "to work", a mainChar choice group,
// images and title templates.
func seed(t *testing.T, db *DB) {
	t.Helper()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}
	word := func(display, category string) int64 {
		t.Helper()
		id, err := tx.EnsureWord(display, category)
		must(err)
		return id
	}

	woman := word("woman", "humanoid")
	dragon := word("dragon", "animal")
	word("teapot", "inanimate") // no pronouns or hometowns
	she, her := word("she", "pronoun"), word("her", "pronoun")
	it := word("it", "pronoun")
	town, volcano := word("small town", "location"), word("volcano", "location")
	word("tax law", "topic")

	for _, link := range [][2]int64{{woman, she}, {dragon, it}} {
		_, err := tx.AddCharacterPronoun(link[0], link[1])
		must(err)
	}
	for _, link := range [][2]int64{{woman, town}, {dragon, volcano}} {
		_, err := tx.AddCharacterHometown(link[0], link[1])
		must(err)
	}
	_, err = tx.AddPronounSet(she, her)
	must(err)
	_, err = tx.AddPronounSet(it, it)
	must(err)

	group, _, err := tx.EnsureName(PronounGroups, "she/he/it")
	must(err)
	for _, p := range []int64{she, it} {
		_, err := tx.AddPronounGroupMember(group, p)
		must(err)
	}
	inf, _, err := tx.EnsureName(Infinitives, "to work")
	must(err)
	_, err = tx.AddVerb(inf, group, word("works", "verb"))
	must(err)

	mainChar, _, err := tx.EnsureName(ChoiceGroups, "mainChar")
	must(err)
	animal, err := tx.NameID(Categories, "animal")
	must(err)
	_, err = tx.AddProbability(mainChar, NewProbability{Weight: 0.8, WordID: woman})
	must(err)
	_, err = tx.AddProbability(mainChar, NewProbability{Weight: 0.2, CategoryID: animal, Prefix: "#[adjective]# talking", Note: "any animal"})
	must(err)

	for _, img := range []Image{
		{Name: "dragon", Filename: "dragon", Extension: "png"},
		{Name: "default1", Filename: "generic-b", Extension: "jpg"},
		{Name: "default0", Filename: "generic-a", Extension: "jpg"},
		{Name: "original", Filename: "hallmark", Extension: "png"},
	} {
		_, err := tx.AddImage(img)
		must(err)
	}
	dragonImg, err := tx.ImageID("dragon")
	must(err)
	_, err = tx.AddWordImage(dragon, dragonImg)
	must(err)

	_, _, err = tx.EnsureTitleTemplate("A #[topic]# Christmas")
	must(err)
	volcanoTitle, _, err := tx.EnsureTitleTemplate("Hot Hot Heart")
	must(err)
	_, err = tx.AddWordTitle(volcano, volcanoTitle)
	must(err)
	dragonTitle, _, err := tx.EnsureTitleTemplate("Here Be Romance")
	must(err)
	_, err = tx.AddWordTitle(dragon, dragonTitle)
	must(err)

	must(tx.Commit())
}

func TestLexemesByCategory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	seed(t, db)

	pronouns, err := db.LexemesByCategory("pronoun")
	if err != nil {
		t.Fatalf("LexemesByCategory: %v", err)
	}
	if len(pronouns) != 3 {
		t.Errorf("expected 3 pronouns, got %d", len(pronouns))
	}

	none, err := db.LexemesByCategory("no such category")
	if err != nil {
		t.Fatalf("LexemesByCategory(missing): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no lexemes, got %v", none)
	}
}

func TestLexemeByID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	seed(t, db)

	topics, _ := db.LexemesByCategory("topic")
	got, err := db.LexemeByID(topics[0].ID)
	if err != nil {
		t.Fatalf("LexemeByID: %v", err)
	}
	if got.Display != "tax law" {
		t.Errorf("expected tax law, got %q", got.Display)
	}

	if _, err := db.LexemeByID(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCharacterCandidates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	seed(t, db)

	got, err := db.CharacterCandidates([]string{"humanoid", "animal", "inanimate"})
	if err != nil {
		t.Fatalf("CharacterCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected woman and dragon, got %v", got)
	}
	if got[0].Display != "woman" || got[1].Display != "dragon" {
		t.Errorf("unexpected candidates %v", got)
	}

	onlyAnimals, _ := db.CharacterCandidates([]string{"animal"})
	if len(onlyAnimals) != 1 || onlyAnimals[0].Display != "dragon" {
		t.Errorf("expected only dragon, got %v", onlyAnimals)
	}
}

func TestGrammarLookups(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	seed(t, db)

	humans, _ := db.LexemesByCategory("humanoid")
	woman := humans[0]

	pronouns, err := db.PronounOptions(woman.ID)
	if err != nil || len(pronouns) != 1 || pronouns[0].Display != "she" {
		t.Errorf("PronounOptions = %v, %v", pronouns, err)
	}

	towns, err := db.HometownOptions(woman.ID)
	if err != nil || len(towns) != 1 || towns[0].Display != "small town" {
		t.Errorf("HometownOptions = %v, %v", towns, err)
	}

	obj, err := db.ObjectPronoun("she")
	if err != nil || obj.Display != "her" {
		t.Errorf("ObjectPronoun(she) = %v, %v", obj, err)
	}
	if _, err := db.ObjectPronoun("they"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ObjectPronoun(they) error = %v, want ErrNotFound", err)
	}

	verb, err := db.Conjugate("to work", "it")
	if err != nil || verb.Display != "works" {
		t.Errorf("Conjugate(to work, it) = %v, %v", verb, err)
	}
	if _, err := db.Conjugate("to meet", "it"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Conjugate(to meet) error = %v, want ErrNotFound", err)
	}
}

func TestChoiceGroupRecords(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	seed(t, db)

	records, err := db.ChoiceGroupRecords("mainChar")
	if err != nil {
		t.Fatalf("ChoiceGroupRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].HasWord() || records[0].Weight != 0.8 {
		t.Errorf("unexpected first record %+v", records[0])
	}
	second := records[1]
	if second.HasWord() || second.Category != "animal" || second.Prefix != "#[adjective]# talking" || second.Note != "any animal" {
		t.Errorf("unexpected second record %+v", second)
	}
}

func TestImages(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	seed(t, db)

	exact, err := db.ImagesFor("dragon", MatchExact)
	if err != nil || len(exact) != 1 || exact[0].File() != "dragon.png" {
		t.Errorf("ImagesFor(exact) = %v, %v", exact, err)
	}

	contained, err := db.ImagesFor("a grumpy talking dragon", MatchContained)
	if err != nil || len(contained) != 1 {
		t.Errorf("ImagesFor(contained) = %v, %v", contained, err)
	}

	missing, _ := db.ImagesFor("a grumpy talking dragon", MatchExact)
	if len(missing) != 0 {
		t.Errorf("exact match should not find partial text, got %v", missing)
	}

	defaults, err := db.DefaultImages()
	if err != nil {
		t.Fatalf("DefaultImages: %v", err)
	}
	if len(defaults) != 2 || defaults[0].File() != "generic-a.jpg" {
		t.Errorf("DefaultImages = %v", defaults)
	}

	orig, err := db.ImageByName("original")
	if err != nil || orig.File() != "hallmark.png" {
		t.Errorf("ImageByName(original) = %v, %v", orig, err)
	}
	if _, err := db.ImageByName("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ImageByName(nope) error = %v", err)
	}
}

func TestTitleTemplatesMatching(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	seed(t, db)

	tests := []struct {
		name      string
		hometown  string
		override  string
		lifeguide string
		want      int
	}{
		{"untriggered only", "small town", "", "a dashing lumberjack", 1},
		{"hometown trigger", "volcano", "", "", 2},
		{"override trigger", "", "dragon", "", 2},
		{"lifeguide contains trigger", "", "", "a grumpy talking dragon", 2},
		{"all triggers", "volcano", "dragon", "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.TitleTemplatesMatching(tt.hometown, tt.override, tt.lifeguide)
			if err != nil {
				t.Fatalf("TitleTemplatesMatching: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d templates %v, want %d", len(got), got, tt.want)
			}
		})
	}
}

func TestWriterIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	added, err := tx.AddWord("topic", "tax law")
	if err != nil || !added {
		t.Fatalf("first AddWord = %v, %v", added, err)
	}
	added, err = tx.AddWord("topic", "tax law")
	if err != nil || added {
		t.Errorf("second AddWord = %v, %v, want not added", added, err)
	}
	if _, created, _ := tx.EnsureName(Categories, "topic"); created {
		t.Error("EnsureName created an existing category")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	topics, _ := db.LexemesByCategory("topic")
	if len(topics) != 1 {
		t.Errorf("expected 1 topic, got %d", len(topics))
	}
}

func TestOpenReadOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.db")

	if _, err := OpenReadOnly(path); err == nil {
		t.Error("expected error opening a missing database read-only")
	}

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	seed(t, db)
	db.Close()

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer ro.Close()

	if err := ro.Ping(); err != nil {
		t.Errorf("Ping: %v", err)
	}
	topics, err := ro.LexemesByCategory("topic")
	if err != nil || len(topics) != 1 {
		t.Errorf("read-only query = %v, %v", topics, err)
	}
	tx, err := ro.Begin()
	if err == nil {
		if _, err := tx.AddWord("topic", "nope"); err == nil {
			t.Error("expected write to fail on read-only database")
		}
		tx.Rollback()
	}
}

func TestNameTableString(t *testing.T) {
	if Categories.String() != "categories" || ChoiceGroups.String() != "choice_groups" {
		t.Errorf("unexpected table names %s %s", Categories, ChoiceGroups)
	}
	if NameTable(42).valid() {
		t.Error("NameTable(42) should not be valid")
	}
}
