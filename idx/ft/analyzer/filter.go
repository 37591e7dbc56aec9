package analyzer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filter transforms a token stream, preserving or adjusting offsets as
// appropriate to the stage. Stages that can fan a single token into several
// (ngram, edgengram) give every fragment its own offsets, the sub-span of the
// original token it was cut from, so partial highlighting can mark just the
// fragment.
type Filter interface {
	Filter(tokens []Token) []Token
}

// LowercaseFilter folds every token to lowercase.
type LowercaseFilter struct{}

func (LowercaseFilter) Filter(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		out[i] = Token{Term: strings.ToLower(tok.Term), Start: tok.Start, End: tok.End}
	}
	return out
}

// ASCIIFoldFilter strips diacritics, folding accented Latin characters to
// their plain ASCII base letters (e.g. "café" -> "cafe").
type ASCIIFoldFilter struct{}

func (ASCIIFoldFilter) Filter(tokens []Token) []Token {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		folded, _, err := transform.String(t, tok.Term)
		if err != nil {
			folded = tok.Term
		}
		out[i] = Token{Term: folded, Start: tok.Start, End: tok.End}
	}
	return out
}

// EdgeNgramFilter emits, for each token, every prefix of length in
// [Min, Max] (clamped to the token's own length) — the "edge ngram" filter
// used for prefix/autocomplete-style FULLTEXT matching.
type EdgeNgramFilter struct {
	Min, Max int
}

func (f EdgeNgramFilter) Filter(tokens []Token) []Token {
	var out []Token
	for _, tok := range tokens {
		runes := []rune(tok.Term)
		max := f.Max
		if max > len(runes) {
			max = len(runes)
		}
		for n := f.Min; n <= max; n++ {
			if n <= 0 {
				continue
			}
			out = append(out, Token{Term: string(runes[:n]), Start: tok.Start, End: tok.Start + n})
		}
	}
	return out
}

// NgramFilter emits every contiguous substring of length in [Min, Max] for
// each token — the general (not edge-anchored) ngram filter.
type NgramFilter struct {
	Min, Max int
}

func (f NgramFilter) Filter(tokens []Token) []Token {
	var out []Token
	for _, tok := range tokens {
		runes := []rune(tok.Term)
		for n := f.Min; n <= f.Max && n <= len(runes); n++ {
			if n <= 0 {
				continue
			}
			for start := 0; start+n <= len(runes); start++ {
				out = append(out, Token{
					Term:  string(runes[start : start+n]),
					Start: tok.Start + start,
					End:   tok.Start + start + n,
				})
			}
		}
	}
	return out
}

// MapperFilter applies a static term->term substitution table (synonym or
// normalization mapping), passing unmapped terms through unchanged.
type MapperFilter struct {
	Table map[string]string
}

func (f MapperFilter) Filter(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		if mapped, ok := f.Table[tok.Term]; ok {
			out[i] = Token{Term: mapped, Start: tok.Start, End: tok.End}
		} else {
			out[i] = tok
		}
	}
	return out
}

// Stemmer reduces a term to its stem. Snowball provides language-specific
// implementations; only an English Porter-style stub ships here, since a
// full multi-language snowball port is out of scope for this module (spec
// Non-goals exclude specific linguistic resources — see DESIGN.md).
type Stemmer interface {
	Stem(term string) string
}

// StemmerFilter wraps a Stemmer as a Filter.
type StemmerFilter struct {
	Stemmer Stemmer
}

func (f StemmerFilter) Filter(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		out[i] = Token{Term: f.Stemmer.Stem(tok.Term), Start: tok.Start, End: tok.End}
	}
	return out
}

// EnglishPorterStub is a deliberately small approximation of Porter
// stemming: it strips the commonest English inflectional suffixes. It is
// named "stub" because it does not implement the full Porter algorithm's
// step 1a-5 rule cascade, only the highest-yield suffixes.
type EnglishPorterStub struct{}

var englishSuffixes = []string{"ing", "edly", "ed", "ly", "es", "s"}

func (EnglishPorterStub) Stem(term string) string {
	for _, suf := range englishSuffixes {
		if strings.HasSuffix(term, suf) && len(term) > len(suf)+2 {
			return strings.TrimSuffix(term, suf)
		}
	}
	return term
}
