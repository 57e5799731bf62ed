// Package plot holds the fixed movie plot template and the record of
// values resolved for one generation.
package plot

// Key names a semantic slot in the plot.
type Key string

const (
	KeyOverride    Key = "bees"
	KeyMainChar    Key = "mainChar"
	KeyWorks       Key = "work/s"
	KeyJobDesc     Key = "jobDesc"
	KeyPronounObj  Key = "pronounObj"
	KeyHometown    Key = "hometown"
	KeyPronounSubj Key = "pronounSubj"
	KeyMeets       Key = "meet/s"
	KeyLifeguide   Key = "lifeguide"
	KeyTopic       Key = "topic"
)

// BasePlot is the plot of every Hallmark movie, with #[...]# around the
// parts that get replaced.
const BasePlot = "#[]#an attractive young <strong>#[woman]#</strong> #[works]# hard in " +
	"<strong>#[a well-paid and professional]#</strong> job in the big city, " +
	"until circumstances require #[her]# to return to the <strong>#[small town]#</strong> " +
	"where #[she]# grew up. There #[she]# #[meets]# <strong>#[an attractive young man]#</strong> " +
	"who teaches #[her]# the true meaning of <strong>#[Christmas]#</strong>."

// SlotOrder maps each tagged slot in BasePlot, in order, to its key.
var SlotOrder = []Key{
	KeyOverride, KeyMainChar, KeyWorks, KeyJobDesc, KeyPronounObj, KeyHometown,
	KeyPronounSubj, KeyPronounSubj, KeyMeets, KeyLifeguide, KeyPronounObj, KeyTopic,
}

// DefaultTopic stands in for an unresolved topic outside the plot.
const DefaultTopic = "Christmas"

// Text is an optionally resolved display string.
type Text struct {
	Value string
	OK    bool
}

// Some wraps a resolved value. An empty string counts as unresolved.
func Some(v string) Text {
	return Text{Value: v, OK: v != ""}
}

// None is an unresolved value.
func None() Text {
	return Text{}
}

// Or returns the value when resolved and fallback otherwise.
func (t Text) Or(fallback string) string {
	if t.OK {
		return t.Value
	}
	return fallback
}

// Variables is everything resolved for one generated plot.
type Variables struct {
	// Original marks a request for the canonical plot; every other field
	// is unresolved when it is set.
	Original bool

	Override    Text
	MainChar    Text
	PronounSubj Text
	PronounObj  Text
	Works       Text
	Meets       Text
	Hometown    Text
	JobDesc     Text
	Lifeguide   Text
	Topic       Text
}

// Lookup returns the value stored for key.
func (v Variables) Lookup(key Key) Text {
	switch key {
	case KeyOverride:
		return v.Override
	case KeyMainChar:
		return v.MainChar
	case KeyPronounSubj:
		return v.PronounSubj
	case KeyPronounObj:
		return v.PronounObj
	case KeyWorks:
		return v.Works
	case KeyMeets:
		return v.Meets
	case KeyHometown:
		return v.Hometown
	case KeyJobDesc:
		return v.JobDesc
	case KeyLifeguide:
		return v.Lifeguide
	case KeyTopic:
		return v.Topic
	}
	return None()
}
