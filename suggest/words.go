package suggest

import (
	"context"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"mvdan.cc/sh/v3/syntax"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/scan"
)

// dirCommands take a directory as their argument.
var dirCommands = map[string]bool{
	"cd":    true,
	"pushd": true,
}

// WordSource completes the shell word under the caret from the request's
// own context: variable names after "$", alias names in command position,
// and recently visited directories for cd and pushd. Variable and alias
// names that start with the word come first, followed by fuzzy matches.
type WordSource struct{}

// Suggest implements Source.
func (WordSource) Suggest(ctx context.Context, req *promptline.Request) ([]promptline.Suggestion, error) {
	text := req.CurrentText
	offset := promptline.ByteOffset(text, req.CurrentCaretPosition)
	start, _ := scan.WordAt(req.Ast, text, offset)
	prefix := text[start:offset]
	limit := maxCandidates(req)

	var out []promptline.Suggestion
	add := func(s promptline.Suggestion) bool {
		out = append(out, s)
		return len(out) < limit
	}

	switch cmd, commandPosition := commandAt(text[:start]); {
	case strings.HasPrefix(prefix, "$"):
		for _, k := range matchNames(strings.TrimPrefix(prefix, "$"), req.Environment) {
			if !add(Word{Value: "$" + k}) {
				break
			}
		}
	case commandPosition:
		if prefix == "" {
			return nil, nil
		}
		for _, k := range matchNames(prefix, req.Aliases) {
			if !add(Word{Value: k, Label: k + "  # " + req.Aliases[k]}) {
				break
			}
		}
	case dirCommands[cmd]:
		seen := make(map[string]bool)
		stack := req.HistoricalPresentDirectoriesStack
		for i := len(stack) - 1; i >= 0; i-- {
			dir := stack[i]
			if dir == "" || seen[dir] || dir == prefix || !strings.HasPrefix(dir, prefix) {
				continue
			}
			seen[dir] = true
			quoted, err := syntax.Quote(dir, syntax.LangBash)
			if err != nil {
				continue
			}
			if !add(Word{Value: quoted, Label: dir}) {
				break
			}
		}
	}
	return out, ctx.Err()
}

// commandAt returns the command name of the simple command that head (the
// text before the current word) belongs to. commandPosition is true when the
// current word is itself the command name.
func commandAt(head string) (cmd string, commandPosition bool) {
	if i := strings.LastIndexAny(head, "|;&("); i >= 0 {
		head = head[i+1:]
	}
	f := strings.Fields(head)
	if len(f) == 0 {
		return "", true
	}
	return f[0], false
}

// matchNames returns the keys of m that complete word: prefix matches in
// sorted order, then fuzzy matches by descending score. The word itself is
// never returned.
func matchNames(word string, m map[string]string) []string {
	keys := sortedKeys(m)
	var out []string
	seen := map[string]bool{word: true}
	for _, k := range keys {
		if !seen[k] && strings.HasPrefix(k, word) {
			seen[k] = true
			out = append(out, k)
		}
	}
	if word == "" {
		return out
	}
	for _, match := range fuzzy.Find(word, keys) {
		if !seen[match.Str] {
			seen[match.Str] = true
			out = append(out, match.Str)
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
