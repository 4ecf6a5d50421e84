package text

import (
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "punctuation and spacing", in: "Hello,  World!!", want: "hello world"},
		{name: "ellipsis and middle dot", in: "  wait… what·ever.  ", want: "wait whatever"},
		{name: "question marks", in: "Why?? Because!", want: "why because"},
		{name: "tabs and newlines", in: "one\t\ttwo\nthree", want: "one two three"},
		{name: "trailing punctuation leaves no space", in: "hello .", want: "hello"},
		{name: "punctuation only", in: "?!,.…", want: ""},
		{name: "non-breaking space", in: "a  b", want: "a b"},
		{name: "unicode case", in: "ÉCOLE Straße", want: "école straße"},
		{name: "hangul kept", in: "안녕하세요?", want: "안녕하세요"},
		{name: "greek ano teleia is a middle dot", in: "a\u0387b", want: "ab"},
		{name: "trailing ano teleia", in: "why\u0387", want: "why"},
		{name: "mark between base and accent", in: "e.\u0301cole", want: "\u00e9cole"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Hello,  World!!",
		" a . ",
		"…leading and trailing…",
		"MiXeD   CaSe\tText",
		"école",
		"생각중...",
		"?",
		"a\u0387b",
		"\u0387 hello",
		"e.\u0301cole",
		"Ω\u0387Σ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_ComposesDecomposedText(t *testing.T) {
	decomposed := "e\u0301cole"
	composed := "\u00e9cole"
	assert.Equal(t, Normalize(composed), Normalize(decomposed))
}

func TestNormalize_PunctuationAndCaseEquivalence(t *testing.T) {
	a := Normalize("Where is the CAT?")
	b := Normalize("where is, the cat!")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("normalized forms differ (-a +b):\n%s", diff)
	}
}

func TestNormalize_CanonicalPunctuationMatches(t *testing.T) {
	assert.Equal(t, Normalize("what\u00b7ever"), Normalize("what\u0387ever"))
}

func FuzzNormalize(f *testing.F) {
	for _, seed := range []string{
		"Hello,  World!!", "a\u0387b", "\u0387 hello", "e.\u0301cole",
		"wait… what·ever", "ÉCOLE Straße", "안녕하세요?", "  ", "?!,.…",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			t.Skip()
		}
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(%q) = %q, then %q", s, once, twice)
		}
	})
}
