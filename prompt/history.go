package prompt

// History is the ordered log of past commands. A false result means the log
// is empty.
type History interface {
	Latest() (string, bool)
	Previous() (string, bool)
	Next() (string, bool)
}

// Scanner splits command text into shell tokens.
type Scanner interface {
	Scan(text string) []string
}

// HistoryCursor adapts a History for prompt navigation. The position itself
// lives in the History.
type HistoryCursor struct {
	history History
}

// NewHistoryCursor wraps h. A nil h behaves as an empty history.
func NewHistoryCursor(h History) *HistoryCursor {
	return &HistoryCursor{history: h}
}

// Previous returns the previous command.
func (c *HistoryCursor) Previous() (string, bool) {
	if c.history == nil {
		return "", false
	}
	return c.history.Previous()
}

// Next returns the next command, "" past the newest one.
func (c *HistoryCursor) Next() (string, bool) {
	if c.history == nil {
		return "", false
	}
	return c.history.Next()
}

// LastArgument returns the last token of the newest command.
func (c *HistoryCursor) LastArgument(scanner Scanner) (string, bool) {
	if c.history == nil || scanner == nil {
		return "", false
	}
	latest, ok := c.history.Latest()
	if !ok {
		return "", false
	}
	toks := scanner.Scan(latest)
	if len(toks) == 0 {
		return "", false
	}
	return toks[len(toks)-1], true
}
