package analyzer

import "unicode"

// Tokenizer splits raw input runes into initial tokens, before any filter
// stage runs.
type Tokenizer interface {
	Tokenize(input []rune) []Token
}

// BlankTokenizer splits on any run of Unicode whitespace.
type BlankTokenizer struct{}

func (BlankTokenizer) Tokenize(input []rune) []Token {
	return splitByClass(input, unicode.IsSpace)
}

// ClassTokenizer splits wherever the Unicode general category changes
// (letter run, digit run, punctuation run, space run each become their own
// token boundary), the "class" tokenizer named in spec.md §4.2.
type ClassTokenizer struct{}

func (ClassTokenizer) Tokenize(input []rune) []Token {
	if len(input) == 0 {
		return nil
	}
	var out []Token
	start := 0
	cls := runeClass(input[0])
	for i := 1; i < len(input); i++ {
		c := runeClass(input[i])
		if c != cls {
			out = append(out, Token{Term: string(input[start:i]), Start: start, End: i})
			start = i
			cls = c
		}
	}
	out = append(out, Token{Term: string(input[start:]), Start: start, End: len(input)})
	return out
}

type charClass uint8

const (
	classSpace charClass = iota
	classLetter
	classDigit
	classOther
)

func runeClass(r rune) charClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r):
		return classLetter
	case unicode.IsDigit(r):
		return classDigit
	default:
		return classOther
	}
}

// PunctuationTokenizer splits on Unicode punctuation, folding runs of
// non-punctuation between splits into single tokens (punctuation itself is
// dropped, not emitted as its own token).
type PunctuationTokenizer struct{}

func (PunctuationTokenizer) Tokenize(input []rune) []Token {
	var out []Token
	start := -1
	for i, r := range input {
		if unicode.IsPunct(r) {
			if start >= 0 {
				out = append(out, Token{Term: string(input[start:i]), Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, Token{Term: string(input[start:]), Start: start, End: len(input)})
	}
	return out
}

// CamelCaseTokenizer splits camelCase and PascalCase identifiers at each
// lower-to-upper transition, in addition to the blank-tokenizer's
// whitespace splits.
type CamelCaseTokenizer struct{}

func (CamelCaseTokenizer) Tokenize(input []rune) []Token {
	words := splitByClass(input, unicode.IsSpace)
	var out []Token
	for _, w := range words {
		runes := []rune(w.Term)
		start := 0
		for i := 1; i < len(runes); i++ {
			if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
				out = append(out, Token{
					Term:  string(runes[start:i]),
					Start: w.Start + start,
					End:   w.Start + i,
				})
				start = i
			}
		}
		out = append(out, Token{
			Term:  string(runes[start:]),
			Start: w.Start + start,
			End:   w.End,
		})
	}
	return out
}

// splitByClass splits input into maximal runs where isBoundary(r) is false,
// dropping boundary runes (used for both BlankTokenizer and, word-wise, by
// CamelCaseTokenizer).
func splitByClass(input []rune, isBoundary func(rune) bool) []Token {
	var out []Token
	start := -1
	for i, r := range input {
		if isBoundary(r) {
			if start >= 0 {
				out = append(out, Token{Term: string(input[start:i]), Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, Token{Term: string(input[start:]), Start: start, End: len(input)})
	}
	return out
}
