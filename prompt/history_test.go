package prompt

import (
	"testing"

	"github.com/Paranoid-AF/promptline/history"
	"github.com/Paranoid-AF/promptline/scan"
)

func TestHistoryCursorNil(t *testing.T) {
	c := NewHistoryCursor(nil)
	if _, ok := c.Previous(); ok {
		t.Error("Previous on nil history should report false")
	}
	if _, ok := c.Next(); ok {
		t.Error("Next on nil history should report false")
	}
	if _, ok := c.LastArgument(scan.Shell{}); ok {
		t.Error("LastArgument on nil history should report false")
	}
}

func TestHistoryCursorDelegates(t *testing.T) {
	log := history.NewLog(0)
	log.Append("ls /tmp")
	log.Append("vim 'my notes.txt'")

	c := NewHistoryCursor(log)
	if got, _ := c.Previous(); got != "vim 'my notes.txt'" {
		t.Errorf("Previous() = %q", got)
	}
	if got, _ := c.Previous(); got != "ls /tmp" {
		t.Errorf("Previous() = %q", got)
	}
	if got, _ := c.Next(); got != "vim 'my notes.txt'" {
		t.Errorf("Next() = %q", got)
	}
	if got, ok := c.LastArgument(scan.Shell{}); !ok || got != "'my notes.txt'" {
		t.Errorf("LastArgument() = %q, %v", got, ok)
	}
}

func TestHistoryCursorLastArgument(t *testing.T) {
	tests := []struct {
		latest string
		want   string
		wantOK bool
	}{
		{"vim main.go", "main.go", true},
		{"git commit -m 'fix bug'", "'fix bug'", true},
		{"ls", "ls", true},
	}
	for _, tt := range tests {
		log := history.NewLog(0)
		log.Append("echo older")
		log.Append(tt.latest)
		got, ok := NewHistoryCursor(log).LastArgument(scan.Shell{})
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LastArgument after %q = %q, %v, want %q, %v", tt.latest, got, ok, tt.want, tt.wantOK)
		}
	}
}
