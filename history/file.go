package history

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ResolveShellHistoryFile picks the most recently modified of $HISTFILE,
// ~/.zsh_history and ~/.bash_history. It returns "" when none exist.
func ResolveShellHistoryFile() string {
	home, _ := os.UserHomeDir()
	candidates := []string{
		filepath.Join(home, ".zsh_history"),
		filepath.Join(home, ".bash_history"),
	}
	if hf := os.Getenv("HISTFILE"); hf != "" {
		candidates = append([]string{hf}, candidates...)
	}

	var bestPath string
	var bestTime time.Time
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().After(bestTime) {
			bestTime = info.ModTime()
			bestPath = path
		}
	}
	return bestPath
}

// Import appends the last n commands of a bash or zsh history file to the
// log. The file is only read.
func (l *Log) Import(path string, n int) (int, error) {
	lines, err := readLastLines(path, n)
	if err != nil {
		return 0, fmt.Errorf("import history %s: %w", path, err)
	}
	count := 0
	for _, line := range lines {
		if cmd := parseHistoryLine(line); cmd != "" {
			l.Append(cmd)
			count++
		}
	}
	return count, nil
}

// parseHistoryLine strips shell-specific prefixes from history lines.
// Zsh extended history format: ": 1234567890:0;actual command"
// Bash format: just the command (no prefix)
func parseHistoryLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	if strings.HasPrefix(line, ": ") {
		if idx := strings.Index(line, ";"); idx != -1 {
			return strings.TrimSpace(line[idx+1:])
		}
	}
	// bash HISTTIMEFORMAT comment lines
	if strings.HasPrefix(line, "#") && isDigits(line[1:]) {
		return ""
	}
	return line
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// readLastLines returns the last n lines of path. n <= 0 reads everything.
func readLastLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	// Estimate 100 bytes per line and seek near the end for large files.
	if n > 0 {
		estimatedBytes := int64(n) * 100
		if estimatedBytes < info.Size() {
			if _, err := f.Seek(-estimatedBytes, io.SeekEnd); err == nil {
				reader := bufio.NewReader(f)
				reader.ReadString('\n') // partial first line
				lines, err := scanLines(reader)
				if err != nil {
					return nil, err
				}
				if len(lines) >= n {
					return lines[len(lines)-n:], nil
				}
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
		}
	}

	lines, err := scanLines(f)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
