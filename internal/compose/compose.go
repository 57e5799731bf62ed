// Package compose fills tagged templates with resolved values.
//
// A template marks each replaceable part with an OpenTag/CloseTag pair, for
// example "the #[small town]# where #[she]# grew up". The text inside a tag is
// the fallback used when its slot has no value.
package compose

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mrwolf/hallmark-server/internal/plot"
)

const (
	OpenTag  = "#["
	CloseTag = "]#"
)

// FallbackPlot is returned when a template and its slot keys disagree.
const FallbackPlot = "ROCKS FALL; EVERYONE DIES. But before they die, they learn the true meaning of love."

// prefixFallback replaces a prefix category that has no words.
const prefixFallback = "happy"

var tagPattern = regexp.MustCompile(regexp.QuoteMeta(OpenTag) + "|" + regexp.QuoteMeta(CloseTag))

// Values supplies the value for a slot key.
type Values interface {
	Lookup(key plot.Key) plot.Text
}

// Split cuts s on both tag markers. Even indexes are literal text and odd
// indexes are the contents of a tag.
func Split(s string) []string {
	return tagPattern.Split(s, -1)
}

// Compose fills every tagged slot of template with the value for the key at
// the same position in keys, then tidies the result. A slot without a value
// keeps its original tag contents. If the number of slots differs from
// len(keys), FallbackPlot is returned.
func Compose(template string, keys []plot.Key, values Values) string {
	parts := Split(template)
	if len(parts)%2 == 0 || len(keys) != (len(parts)-1)/2 {
		return FallbackPlot
	}

	var b strings.Builder
	for i, key := range keys {
		b.WriteString(parts[2*i])
		b.WriteString(values.Lookup(key).Or(parts[2*i+1]))
	}
	b.WriteString(parts[len(parts)-1])

	return Tidy(b.String())
}

// Tidy removes leftover tag markers, collapses whitespace and capitalises
// the first letter.
func Tidy(s string) string {
	words := strings.Fields(StripTags(s))
	if len(words) == 0 {
		return ""
	}
	words[0] = capitalize(words[0])
	return strings.Join(words, " ")
}

// StripTags removes every tag marker from s, keeping the tag contents.
func StripTags(s string) string {
	return strings.NewReplacer(OpenTag, "", CloseTag, "").Replace(s)
}

// ExpandPrefix resolves a one-level prefix template such as
// "#[adjective]# talking". Each tag names a category; pick returns a word
// from it. A category with no word becomes "happy".
func ExpandPrefix(prefix string, pick func(category string) (string, bool)) string {
	if prefix == "" {
		return ""
	}

	var b strings.Builder
	for i, part := range Split(prefix) {
		if i%2 == 0 {
			b.WriteString(part)
			continue
		}
		word, ok := pick(part)
		if !ok || word == "" {
			word = prefixFallback
		}
		b.WriteString(word)
	}
	return b.String()
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}
