package rank

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokenizer splits text into lowercase match tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// TokenizerFunc adapts a plain function to Tokenizer.
type TokenizerFunc func(text string) []string

// Tokenize calls f(text).
func (f TokenizerFunc) Tokenize(text string) []string { return f(text) }

// SimpleTokenizer lowercases text and splits it on whitespace, punctuation
// and symbol runs. Scripts written without spaces (e.g. Japanese) come out
// as long single tokens unless punctuation separates them.
type SimpleTokenizer struct{}

// Tokenize implements Tokenizer. Empty input yields nil.
func (SimpleTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return strings.FieldsFunc(lower(text), isSeparator)
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// lower applies Unicode full lowercasing (context-sensitive, e.g. final sigma).
// cases.Caser keeps state between calls, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
