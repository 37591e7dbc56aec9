package bm25

import (
	"sort"

	"github.com/surrealdb/qcore/idx/ft/analyzer"
)

// Span is a matched token's [Start, End) range in the original field text.
// matchedSpans and Highlight work in rune offsets, the unit analyzer.Token
// uses; Offsets converts its spans to byte offsets before returning them.
type Span struct {
	Start, End int
}

// matchedSpans re-analyzes text with pipeline and locates every span a
// @@/@N@ match bound to one of matchTerms touches. partial=false (the
// default) reports the full word the tokenizer stage produced, even if
// the match itself only hit one of its filter-stage fragments (e.g. an
// edgengram or ngram filter); partial=true reports the matched fragment's
// own span instead — spec.md §4.3's "prefix-boundary of the match, useful
// for edge-n-gram analyzers". Grounded on
// original_source/crates/core/tests/matches.rs's
// select_where_matches_partial_highlight{,_ngram} fixtures, which pin both
// the full-word and fragment-span outputs byte-for-byte.
func matchedSpans(p analyzer.Pipeline, text string, matchTerms []string, partial bool) []Span {
	want := make(map[string]bool, len(matchTerms))
	for _, t := range matchTerms {
		want[t] = true
	}

	runes := []rune(text)
	var rawTokens []analyzer.Token
	for _, tok := range p.Tokenizers {
		rawTokens = append(rawTokens, tok.Tokenize(runes)...)
	}
	sort.Slice(rawTokens, func(i, j int) bool { return rawTokens[i].Start < rawTokens[j].Start })

	enclosingRaw := func(pos int) (analyzer.Token, bool) {
		for _, rt := range rawTokens {
			if pos >= rt.Start && pos < rt.End {
				return rt, true
			}
		}
		return analyzer.Token{}, false
	}

	filtered := p.Run(text)

	var spans []Span
	seen := map[Span]bool{}
	for _, tok := range filtered {
		if !want[tok.Term] {
			continue
		}
		sp := Span{Start: tok.Start, End: tok.End}
		if !partial {
			if rt, ok := enclosingRaw(tok.Start); ok {
				sp = Span{Start: rt.Start, End: rt.End}
			}
		}
		if !seen[sp] {
			seen[sp] = true
			spans = append(spans, sp)
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// Highlight re-analyzes text with pipeline and wraps every span
// matchedSpans locates in prefix/suffix, leaving unmatched text untouched.
func Highlight(p analyzer.Pipeline, text, prefix, suffix string, matchTerms []string, partial bool) string {
	spans := matchedSpans(p, text, matchTerms, partial)
	if len(spans) == 0 {
		return text
	}
	runes := []rune(text)
	var out []rune
	pos := 0
	for _, sp := range spans {
		if sp.Start < pos || sp.Start > len(runes) || sp.End > len(runes) {
			continue // overlapping or out-of-range span, skip rather than corrupt output
		}
		out = append(out, runes[pos:sp.Start]...)
		out = append(out, []rune(prefix)...)
		out = append(out, runes[sp.Start:sp.End]...)
		out = append(out, []rune(suffix)...)
		pos = sp.End
	}
	out = append(out, runes[pos:]...)
	return string(out)
}

// Offsets re-analyzes text with pipeline and returns the {start,end} byte
// range of every match in text, ascending by start.
func Offsets(p analyzer.Pipeline, text string, matchTerms []string, partial bool) []Span {
	spans := matchedSpans(p, text, matchTerms, partial)
	runes := []rune(text)
	for i, sp := range spans {
		spans[i] = Span{Start: len(string(runes[:sp.Start])), End: len(string(runes[:sp.End]))}
	}
	return spans
}
