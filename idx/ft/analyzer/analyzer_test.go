package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlankTokenizerSplitsOnWhitespace(t *testing.T) {
	r := require.New(t)
	toks := BlankTokenizer{}.Tokenize([]rune("the quick  brown fox"))
	var terms []string
	for _, tok := range toks {
		terms = append(terms, tok.Term)
	}
	r.Equal([]string{"the", "quick", "brown", "fox"}, terms)
}

func TestCamelCaseTokenizerSplitsAtCaseTransitions(t *testing.T) {
	r := require.New(t)
	toks := CamelCaseTokenizer{}.Tokenize([]rune("fooBarBaz qux"))
	var terms []string
	for _, tok := range toks {
		terms = append(terms, tok.Term)
	}
	r.Equal([]string{"foo", "Bar", "Baz", "qux"}, terms)
}

func TestClassTokenizerSplitsOnCategoryChange(t *testing.T) {
	r := require.New(t)
	toks := ClassTokenizer{}.Tokenize([]rune("abc123 def"))
	var terms []string
	for _, tok := range toks {
		terms = append(terms, tok.Term)
	}
	r.Equal([]string{"abc", "123", " ", "def"}, terms)
}

func TestPunctuationTokenizerDropsPunctuation(t *testing.T) {
	r := require.New(t)
	toks := PunctuationTokenizer{}.Tokenize([]rune("hello, world!"))
	var terms []string
	for _, tok := range toks {
		terms = append(terms, tok.Term)
	}
	r.Equal([]string{"hello", " world"}, terms)
}

func TestLowercaseFilterPreservesOffsets(t *testing.T) {
	r := require.New(t)
	in := []Token{{Term: "HeLLo", Start: 0, End: 5}}
	out := LowercaseFilter{}.Filter(in)
	r.Equal("hello", out[0].Term)
	r.Equal(0, out[0].Start)
	r.Equal(5, out[0].End)
}

func TestASCIIFoldFilterStripsDiacritics(t *testing.T) {
	r := require.New(t)
	in := []Token{{Term: "café", Start: 0, End: 4}}
	out := ASCIIFoldFilter{}.Filter(in)
	r.Equal("cafe", out[0].Term)
}

func TestEdgeNgramFilterEmitsPrefixes(t *testing.T) {
	r := require.New(t)
	in := []Token{{Term: "hello", Start: 0, End: 5}}
	out := EdgeNgramFilter{Min: 2, Max: 4}.Filter(in)
	var terms []string
	for _, tok := range out {
		terms = append(terms, tok.Term)
	}
	r.Equal([]string{"he", "hel", "hell"}, terms)
}

func TestNgramFilterEmitsAllSubstrings(t *testing.T) {
	r := require.New(t)
	in := []Token{{Term: "abc", Start: 0, End: 3}}
	out := NgramFilter{Min: 2, Max: 2}.Filter(in)
	var terms []string
	for _, tok := range out {
		terms = append(terms, tok.Term)
	}
	r.Equal([]string{"ab", "bc"}, terms)
}

func TestMapperFilterSubstitutesKnownTerms(t *testing.T) {
	r := require.New(t)
	f := MapperFilter{Table: map[string]string{"teh": "the"}}
	in := []Token{{Term: "teh", Start: 0, End: 3}, {Term: "cat", Start: 4, End: 7}}
	out := f.Filter(in)
	r.Equal("the", out[0].Term)
	r.Equal("cat", out[1].Term)
}

func TestEnglishPorterStubStripsCommonSuffixes(t *testing.T) {
	r := require.New(t)
	r.Equal("jump", EnglishPorterStub{}.Stem("jumping"))
	r.Equal("cat", EnglishPorterStub{}.Stem("cats"))
}

func TestBuildFallsBackToBlankTokenizerWhenUnnamed(t *testing.T) {
	r := require.New(t)
	p := Build(Definition{Filters: []FilterSpec{{Name: "lowercase"}}})
	toks := p.Run("Hello World")
	var terms []string
	for _, tok := range toks {
		terms = append(terms, tok.Term)
	}
	r.Equal([]string{"hello", "world"}, terms)
}
