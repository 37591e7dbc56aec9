package bm25

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/qcore/idx/ft/analyzer"
)

// buildEdgeNgramPipeline mirrors scenario S1's `DEFINE ANALYZER ...
// TOKENIZERS blank,class FILTERS lowercase,edgengram(2,100)`.
func buildEdgeNgramPipeline() analyzer.Pipeline {
	return analyzer.Build(analyzer.Definition{
		Tokenizers: []string{"blank", "class"},
		Filters: []analyzer.FilterSpec{
			{Name: "lowercase"},
			{Name: "edgengram", Args: map[string]string{"min": "2", "max": "100"}},
		},
	})
}

func TestHighlightWrapsFullTokenByDefault(t *testing.T) {
	r := require.New(t)
	p := buildEdgeNgramPipeline()
	got := Highlight(p, "Hello World!", "<em>", "</em>", []string{"he"}, false)
	r.Equal("<em>Hello</em> World!", got)
}

func TestHighlightPartialWrapsOnlyTheMatchedFragment(t *testing.T) {
	r := require.New(t)
	p := buildEdgeNgramPipeline()
	got := Highlight(p, "Hello World!", "<em>", "</em>", []string{"he"}, true)
	r.Equal("<em>He</em>llo World!", got)
}

func TestOffsetsDefaultReportsFullTokenSpan(t *testing.T) {
	r := require.New(t)
	p := buildEdgeNgramPipeline()
	got := Offsets(p, "Hello World!", []string{"he"}, false)
	r.Equal([]Span{{Start: 0, End: 5}}, got)
}

func TestOffsetsPartialReportsFragmentSpan(t *testing.T) {
	r := require.New(t)
	p := buildEdgeNgramPipeline()
	got := Offsets(p, "Hello World!", []string{"he"}, true)
	r.Equal([]Span{{Start: 0, End: 2}}, got)
}

// buildNgramPipeline mirrors the non-edge ngram(1,32) fixture.
func buildNgramPipeline() analyzer.Pipeline {
	return analyzer.Build(analyzer.Definition{
		Tokenizers: []string{"blank", "class"},
		Filters: []analyzer.FilterSpec{
			{Name: "lowercase"},
			{Name: "ngram", Args: map[string]string{"min": "1", "max": "32"}},
		},
	})
}

func TestHighlightNgramFullWordMatch(t *testing.T) {
	r := require.New(t)
	p := buildNgramPipeline()
	got := Highlight(p, "Hello World!", "<em>", "</em>", []string{"hello"}, false)
	r.Equal("<em>Hello</em> World!", got)
}

func TestHighlightNgramDefaultWrapsFullWordForInnerFragment(t *testing.T) {
	r := require.New(t)
	p := buildNgramPipeline()
	got := Highlight(p, "Hello World!", "<em>", "</em>", []string{"el"}, false)
	r.Equal("<em>Hello</em> World!", got)
}

func TestHighlightNgramPartialWrapsOnlyTheInnerFragment(t *testing.T) {
	r := require.New(t)
	p := buildNgramPipeline()
	got := Highlight(p, "Hello World!", "<em>", "</em>", []string{"el"}, true)
	r.Equal("H<em>el</em>lo World!", got)
}

func TestHighlightReturnsTextUnchangedWhenNothingMatches(t *testing.T) {
	r := require.New(t)
	p := buildEdgeNgramPipeline()
	got := Highlight(p, "Hello World!", "<em>", "</em>", []string{"zzz"}, false)
	r.Equal("Hello World!", got)
}
