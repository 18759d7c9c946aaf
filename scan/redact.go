package scan

import (
	"bytes"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// publicVars are environment variables whose values are safe to show in logs.
var publicVars = map[string]bool{
	"HOME": true, "USER": true, "PWD": true, "OLDPWD": true,
	"SHELL": true, "PATH": true, "LANG": true, "TERM": true,
	"EDITOR": true, "PAGER": true, "TMPDIR": true, "LOGNAME": true,
}

// isSpecialParam reports whether name is $?, $!, $1 and friends.
func isSpecialParam(name string) bool {
	if len(name) != 1 {
		return false
	}
	return strings.ContainsAny(name, "?!#@*-$_0123456789")
}

// Redact hides variable references and assignment values in a command line
// before it is written to a log. Public variables and special parameters are
// kept. Text that does not parse is redacted with regular expressions instead.
func Redact(text string) string {
	prog := Parse(text)
	if prog == nil {
		return redactFallback(text)
	}

	syntax.Walk(prog, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.ParamExp:
			if n.Param != nil && !publicVars[n.Param.Value] && !isSpecialParam(n.Param.Value) {
				n.Param.Value = "REDACTED"
			}
		case *syntax.Assign:
			if n.Name != nil && !publicVars[n.Name.Value] && n.Value != nil {
				n.Value.Parts = []syntax.WordPart{&syntax.Lit{Value: "***"}}
			}
		}
		return true
	})

	var buf bytes.Buffer
	if err := syntax.NewPrinter(syntax.Indent(0)).Print(&buf, prog); err != nil {
		return redactFallback(text)
	}
	return strings.TrimRight(buf.String(), "\n")
}

var (
	reVarRef = regexp.MustCompile(`\$\{?([A-Za-z_][A-Za-z0-9_]*)\}?`)
	reAssign = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)=(\S+)`)
)

func redactFallback(text string) string {
	text = reVarRef.ReplaceAllStringFunc(text, func(m string) string {
		name := reVarRef.FindStringSubmatch(m)[1]
		if publicVars[name] {
			return m
		}
		if strings.HasPrefix(m, "${") && strings.HasSuffix(m, "}") {
			return "${REDACTED}"
		}
		return "$REDACTED"
	})
	return reAssign.ReplaceAllStringFunc(text, func(m string) string {
		name := reAssign.FindStringSubmatch(m)[1]
		if publicVars[name] {
			return m
		}
		return name + "=***"
	})
}
