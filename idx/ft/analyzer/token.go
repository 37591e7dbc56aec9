// Package analyzer implements the FULLTEXT analyzer pipeline: a declarative
// chain of tokenizer and filter stages that turns input text into offset-
// tracked tokens. Grounded on spec.md §4.2's "Analyzer is a pipeline"
// contract and original_source/crates/core/src/idx/ft/analyzer, adapted to
// the Go idiom of small interfaces over an internal registry, the way
// erigon composes its state-change "plain state" readers from small
// interface stages.
package analyzer

// Token is one analyzer output: the term text plus its rune offsets
// (indices into []rune(input), not byte offsets) in the original input,
// used by highlighting (search::highlight) to map scored terms back onto
// source text.
type Token struct {
	Term  string
	Start int
	End   int
}
