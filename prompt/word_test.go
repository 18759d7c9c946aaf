package prompt

import "testing"

func TestDeleteWord(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		position  int
		wantText  string
		wantCaret int
	}{
		{"trailing space", "foo bar ", 8, "foo ", 4},
		{"single word", "foo", 3, "", 0},
		{"empty", "", 0, "", 0},
		{"position zero", "foo bar", 0, "foo bar", 0},
		{"two words", "foo bar", 7, "foo ", 4},
		{"only spaces", "   ", 3, "", 0},
		{"word then spaces", "a  ", 3, "", 0},
		{"caret mid text after space", "foo bar baz", 8, "foo baz", 4},
		{"caret inside word", "foo bar", 5, "foo ar", 4},
		{"multiple spaces between words", "foo  bar", 8, "foo  ", 5},
		{"double space then trailing space", "foo  bar ", 9, "foo  ", 5},
		{"interior double spaces kept", "a  b  c", 7, "a  b  ", 6},
		{"double space before tail", "foo  bar baz", 9, "foo  baz", 5},
		{"leading space", " foo", 4, "", 0},
		{"non ascii", "échō 🐠", 7, "échō ", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Buffer
			b.SetValue(tt.text, tt.position)
			DeleteWord(&b, tt.position)
			if b.Value() != tt.wantText {
				t.Errorf("DeleteWord(%q, %d) = %q, want %q", tt.text, tt.position, b.Value(), tt.wantText)
			}
			if b.Caret() != tt.wantCaret {
				t.Errorf("DeleteWord(%q, %d) caret = %d, want %d", tt.text, tt.position, b.Caret(), tt.wantCaret)
			}
		})
	}
}
