// Package scan tokenizes and parses shell command text with mvdan.cc/sh.
package scan

import (
	"sort"
	"strings"
	"unicode"

	"mvdan.cc/sh/v3/syntax"
)

// Token is one shell word of a command line. Start and End are byte offsets.
type Token struct {
	Value string
	Start int
	End   int
}

func newParser() *syntax.Parser {
	return syntax.NewParser(syntax.Variant(syntax.LangBash), syntax.KeepComments(true))
}

// Parse returns the AST of text, or nil when text is not a complete command
// (an unterminated quote, a dangling pipe, ...).
func Parse(text string) *syntax.File {
	prog, err := newParser().Parse(strings.NewReader(text), "")
	if err != nil {
		return nil
	}
	return prog
}

// Scan splits text into shell words. Input that does not parse falls back to
// whitespace splitting so a half-typed command still yields tokens.
func Scan(text string) []Token {
	return Words(Parse(text), text)
}

// Words returns the words of prog, whose source is text. A nil prog falls back
// to whitespace splitting of text. Words nested in expansions are reported as
// the enclosing word.
func Words(prog *syntax.File, text string) []Token {
	if prog == nil {
		return fields(text)
	}

	var toks []Token
	syntax.Walk(prog, func(node syntax.Node) bool {
		w, ok := node.(*syntax.Word)
		if !ok {
			return true
		}
		start, end := int(w.Pos().Offset()), int(w.End().Offset())
		if start < 0 || end > len(text) || start >= end {
			return false
		}
		toks = append(toks, Token{Value: text[start:end], Start: start, End: end})
		return false
	})
	sort.Slice(toks, func(i, j int) bool { return toks[i].Start < toks[j].Start })
	return toks
}

// WordAt returns the byte span of the word that contains or ends at offset.
// When offset sits between words, the empty span [offset, offset) is returned.
func WordAt(prog *syntax.File, text string, offset int) (start, end int) {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	for _, tok := range Words(prog, text) {
		if tok.Start <= offset && offset <= tok.End {
			return tok.Start, tok.End
		}
	}
	return offset, offset
}

// fields splits on whitespace and keeps byte offsets.
func fields(text string) []Token {
	var toks []Token
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, Token{Value: text[start:i], Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, Token{Value: text[start:], Start: start, End: len(text)})
	}
	return toks
}

// Shell adapts the package functions to the parser and scanner interfaces
// consumed by the prompt controller.
type Shell struct{}

// Parse implements prompt.Parser.
func (Shell) Parse(text string) *syntax.File {
	return Parse(text)
}

// Scan implements prompt.Scanner.
func (Shell) Scan(text string) []string {
	toks := Scan(text)
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Value
	}
	return out
}
