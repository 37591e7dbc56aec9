package analyzer

// Definition is the declarative per-index configuration a `DEFINE
// ANALYZER` statement produces: tokenizer + filter stage names. It is
// consumed, not produced, by this package — parsing the DDL syntax is the
// parser's job; this struct is the boundary the executor's index
// maintenance hooks hand to Build.
type Definition struct {
	Name       string
	Tokenizers []string
	Filters    []FilterSpec
}

// FilterSpec names a filter stage and its construction arguments.
type FilterSpec struct {
	Name string
	Args map[string]string
}

// Pipeline runs one or more tokenizers then a chain of filters, producing
// the final token stream `search::analyze` and the posting-store ingestion
// path both consume.
type Pipeline struct {
	Tokenizers []Tokenizer
	Filters    []Filter
}

// Run tokenizes input through every configured tokenizer (concatenating
// their outputs, offsets preserved) and then threads the combined stream
// through each filter stage in order.
func (p Pipeline) Run(input string) []Token {
	runes := []rune(input)
	var tokens []Token
	for _, t := range p.Tokenizers {
		tokens = append(tokens, t.Tokenize(runes)...)
	}
	for _, f := range p.Filters {
		tokens = f.Filter(tokens)
	}
	return tokens
}

// Build resolves a Definition into a runnable Pipeline using the package's
// built-in tokenizer/filter registry. Unknown stage names are skipped
// rather than erroring, since DEFINE ANALYZER's full grammar (custom
// dictionaries, language tags) is outside this module's scope; callers
// needing strict validation should check the returned Pipeline isn't
// empty when Definition named stages.
func Build(def Definition) Pipeline {
	var p Pipeline
	for _, name := range def.Tokenizers {
		if t := lookupTokenizer(name); t != nil {
			p.Tokenizers = append(p.Tokenizers, t)
		}
	}
	if len(p.Tokenizers) == 0 {
		p.Tokenizers = []Tokenizer{BlankTokenizer{}}
	}
	for _, spec := range def.Filters {
		if f := lookupFilter(spec); f != nil {
			p.Filters = append(p.Filters, f)
		}
	}
	return p
}

func lookupTokenizer(name string) Tokenizer {
	switch name {
	case "blank":
		return BlankTokenizer{}
	case "class":
		return ClassTokenizer{}
	case "punctuation":
		return PunctuationTokenizer{}
	case "camel":
		return CamelCaseTokenizer{}
	default:
		return nil
	}
}

func lookupFilter(spec FilterSpec) Filter {
	switch spec.Name {
	case "lowercase":
		return LowercaseFilter{}
	case "ascii":
		return ASCIIFoldFilter{}
	case "edgengram":
		return EdgeNgramFilter{Min: atoiDefault(spec.Args["min"], 2), Max: atoiDefault(spec.Args["max"], 10)}
	case "ngram":
		return NgramFilter{Min: atoiDefault(spec.Args["min"], 2), Max: atoiDefault(spec.Args["max"], 3)}
	case "snowball":
		return StemmerFilter{Stemmer: EnglishPorterStub{}}
	case "mapper":
		return MapperFilter{Table: map[string]string{}}
	default:
		return nil
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	return n
}
