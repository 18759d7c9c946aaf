package suggest

import (
	"context"
	"strings"
	"testing"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/scan"
)

func wordRequest(text string) *promptline.Request {
	return &promptline.Request{
		CurrentText:          text,
		CurrentCaretPosition: promptline.UTF16Len(text),
		Ast:                  scan.Parse(text),
		Environment:          map[string]string{"HOME": "/home/u", "HOSTNAME": "box", "PATH": "/bin"},
		Aliases:              map[string]string{"g": "git", "gs": "git status", "ll": "ls -l"},
		HistoricalPresentDirectoriesStack: []string{
			"/srv/www", "/tmp/my dir", "/srv/data", "/srv/www",
		},
	}
}

func TestWordSource(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"variables", "echo $HO", []string{"$HOME", "$HOSTNAME"}},
		{"variable exact match skipped", "echo $PATH", nil},
		{"fuzzy variables", "echo $PTH", []string{"$PATH"}},
		{"aliases in command position", "g", []string{"gs  # git status"}},
		{"aliases after pipe", "cat x | l", []string{"ll  # ls -l"}},
		{"no aliases for arguments", "echo g", nil},
		{"directories most recent first", "cd /srv/", []string{"/srv/www", "/srv/data"}},
		{"pushd directories", "pushd /tmp", []string{"/tmp/my dir"}},
		{"other command arguments", "ls /srv/", nil},
		{"blank", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WordSource{}.Suggest(context.Background(), wordRequest(tt.text))
			if err != nil {
				t.Fatal(err)
			}
			if d := displays(got); !equalStrings(d, tt.want) {
				t.Errorf("Suggest(%q) = %v, want %v", tt.text, d, tt.want)
			}
		})
	}
}

func TestWordSourceQuotesDirectories(t *testing.T) {
	got, err := WordSource{}.Suggest(context.Background(), wordRequest("cd /tmp/m"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one suggestion, got %v", displays(got))
	}
	w, ok := got[0].(Word)
	if !ok {
		t.Fatalf("expected Word, got %T", got[0])
	}
	if !strings.HasPrefix(w.Value, "'") || !strings.Contains(w.Value, "/tmp/my dir") {
		t.Errorf("expected a quoted directory, got %q", w.Value)
	}
}

func TestWordSourceLimit(t *testing.T) {
	req := wordRequest("echo $")
	req.MaxCandidates = 2
	got, err := WordSource{}.Suggest(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 suggestions, got %v", displays(got))
	}
}

func TestMatchNames(t *testing.T) {
	m := map[string]string{"GOPATH": "", "GOROOT": "", "GOFLAGS": "", "PATH": ""}
	got := matchNames("GO", m)
	if want := []string{"GOFLAGS", "GOPATH", "GOROOT"}; !equalStrings(got, want) {
		t.Errorf("prefix matches = %v, want %v", got, want)
	}

	got = matchNames("gpth", m)
	if len(got) == 0 || got[0] != "GOPATH" {
		t.Errorf("expected case-insensitive fuzzy match GOPATH first, got %v", got)
	}

	if got := matchNames("", map[string]string{"A": "", "B": ""}); !equalStrings(got, []string{"A", "B"}) {
		t.Errorf("empty word should list every key, got %v", got)
	}
}

func TestCommandAt(t *testing.T) {
	tests := []struct {
		head     string
		cmd      string
		position bool
	}{
		{"", "", true},
		{"cd ", "cd", false},
		{"sudo ls ", "sudo", false},
		{"make && ", "", true},
		{"(cd ", "cd", false},
		{"a | b c ", "b", false},
	}
	for _, tt := range tests {
		cmd, pos := commandAt(tt.head)
		if cmd != tt.cmd || pos != tt.position {
			t.Errorf("commandAt(%q) = %q, %v, want %q, %v", tt.head, cmd, pos, tt.cmd, tt.position)
		}
	}
}
