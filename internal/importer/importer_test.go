package importer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrwolf/hallmark-server/internal/lexicon"
	"github.com/mrwolf/hallmark-server/internal/logger"
)

func setupImporter(t *testing.T) (*Importer, *lexicon.DB) {
	t.Helper()

	db, err := lexicon.Open(filepath.Join(t.TempDir(), "lexicon.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db, logger.NewNop()), db
}

func TestImportSample(t *testing.T) {
	im, db := setupImporter(t)

	stats, err := im.ImportFile("testdata/sample.txt")
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if stats.Added == 0 {
		t.Fatal("expected rows to be added")
	}

	topics, _ := db.LexemesByCategory("topic")
	if len(topics) != 2 {
		t.Errorf("expected 2 topics, got %v", topics)
	}

	verb, err := db.Conjugate("to meet", "they")
	if err != nil || verb.Display != "meet" {
		t.Errorf("Conjugate(to meet, they) = %v, %v", verb, err)
	}
	verb, err = db.Conjugate("to work", "he")
	if err != nil || verb.Display != "works" {
		t.Errorf("Conjugate(to work, he) = %v, %v", verb, err)
	}

	obj, err := db.ObjectPronoun("they")
	if err != nil || obj.Display != "them" {
		t.Errorf("ObjectPronoun(they) = %v, %v", obj, err)
	}

	candidates, _ := db.CharacterCandidates([]string{"humanoid", "animal", "inanimate"})
	if len(candidates) != 6 {
		t.Errorf("expected 6 character candidates, got %d", len(candidates))
	}

	records, _ := db.ChoiceGroupRecords("lifeguide")
	if len(records) != 2 || records[1].Prefix != "#[adjective]# talking" || records[1].Category != "animal" {
		t.Errorf("unexpected lifeguide records %+v", records)
	}
	mainChar, _ := db.ChoiceGroupRecords("mainChar")
	if len(mainChar) != 3 || mainChar[2].HasWord() || mainChar[2].Note == "" {
		t.Errorf("unexpected mainChar records %+v", mainChar)
	}

	images, _ := db.ImagesFor("a swarm of bees disguised as", lexicon.MatchExact)
	if len(images) != 1 || images[0].File() != "bees.gif" {
		t.Errorf("unexpected bee images %v", images)
	}

	titles, _ := db.TitleTemplatesMatching("volcano", "", "")
	if len(titles) != 4 {
		t.Errorf("expected 3 general titles plus the volcano title, got %v", titles)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	im, db := setupImporter(t)

	if _, err := im.ImportFile("testdata/sample.txt"); err != nil {
		t.Fatalf("first import: %v", err)
	}
	stats, err := im.ImportFile("testdata/sample.txt")
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if stats.Added != 0 {
		t.Errorf("second import added %d rows", stats.Added)
	}
	if stats.Skipped == 0 {
		t.Error("second import should report skipped rows")
	}

	records, _ := db.ChoiceGroupRecords("mainChar")
	if len(records) != 3 {
		t.Errorf("probability group duplicated: %d records", len(records))
	}
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "unknown section",
			input: "#nonsense\nfoo\n",
			want:  ErrUnknownSection,
		},
		{
			name:  "data before section",
			input: "woman\n",
			want:  ErrMalformedLine,
		},
		{
			name:  "word before category",
			input: "#words\nwoman\n",
			want:  ErrMalformedLine,
		},
		{
			name:  "unknown infinitive",
			input: "#verbs\n~to dance\n\tthey=dance\n",
			want:  ErrMissing,
		},
		{
			name:  "unknown pronoun group",
			input: "#infinitives\nto dance\n#verbs\n~to dance\n\tthey=dance\n",
			want:  ErrMissing,
		},
		{
			name:  "unknown character",
			input: "#characterSettings\nwoman\n\tp=she\n",
			want:  ErrMissing,
		},
		{
			name:  "bad probability",
			input: "#probabilities\n~mainChar\n\tlots\tw=woman\n",
			want:  ErrMalformedLine,
		},
		{
			name:  "image with too few fields",
			input: "#images\ndefault0,default-a\n",
			want:  ErrMalformedLine,
		},
		{
			name:  "title without separator",
			input: "#titleTemplates\nA Very Merry Movie\n",
			want:  ErrMalformedLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im, _ := setupImporter(t)
			_, err := im.ImportReader(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("got error %v, want %v", err, tt.want)
			}
		})
	}
}

func TestImportRollsBackOnError(t *testing.T) {
	im, db := setupImporter(t)

	input := "#words\n~topic\ntax law\n#nonsense\n"
	if _, err := im.ImportReader(strings.NewReader(input)); err == nil {
		t.Fatal("expected error")
	}

	topics, err := db.LexemesByCategory("topic")
	if err != nil {
		t.Fatalf("LexemesByCategory: %v", err)
	}
	if len(topics) != 0 {
		t.Errorf("failed import left %d topics behind", len(topics))
	}
}

func TestImportSkipsUnknownLinks(t *testing.T) {
	im, db := setupImporter(t)

	input := strings.Join([]string{
		"#images",
		"dragon,dragon,png",
		"#wordsToImages",
		"dragon,dragon",
		"#titleTemplates",
		"Here Be Romance//dragon",
	}, "\n")

	stats, err := im.ImportReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	if stats.Added != 2 {
		t.Errorf("expected image and template to be added, got %+v", stats)
	}

	titles, _ := db.TitleTemplatesMatching("", "", "")
	if len(titles) != 1 {
		t.Errorf("untriggered template should match anything, got %v", titles)
	}
}
