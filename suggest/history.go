package suggest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github.com/coder/hnsw"

	"github.com/Paranoid-AF/promptline"
)

const (
	// trigramDims is the size of the hashed trigram vectors.
	trigramDims = 128
	// maxSimilarDistance bounds the cosine distance of fuzzy matches.
	maxSimilarDistance = 0.45
	// minSimilarQuery is the shortest input that gets fuzzy matches.
	minSimilarQuery = 3
)

// HistorySource suggests previously run command lines. Lines that start with
// the current text come first, newest first; the remaining slots are filled
// with lines that look similar, found through an HNSW graph over hashed
// character trigrams.
type HistorySource struct {
	mu       sync.RWMutex
	graph    *hnsw.Graph[string] // keyed by command hash
	commands map[string]string   // hash -> command
	recency  []string            // commands, oldest first, without repeats
}

// NewHistorySource creates an empty source.
func NewHistorySource() *HistorySource {
	return &HistorySource{
		graph:    hnsw.NewGraph[string](),
		commands: make(map[string]string),
	}
}

// Add records commands, oldest first. A repeated command moves to the front.
func (h *HistorySource) Add(cmds ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var nodes []hnsw.Node[string]
	for _, cmd := range cmds {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		key := hashCommand(cmd)
		if _, ok := h.commands[key]; ok {
			h.recency = removeString(h.recency, cmd)
		} else {
			h.commands[key] = cmd
			nodes = append(nodes, hnsw.MakeNode(key, trigramVector(cmd)))
		}
		h.recency = append(h.recency, cmd)
	}
	if len(nodes) > 0 {
		h.graph.Add(nodes...)
	}
}

// Len returns the number of distinct commands.
func (h *HistorySource) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.recency)
}

// Suggest implements Source.
func (h *HistorySource) Suggest(ctx context.Context, req *promptline.Request) ([]promptline.Suggestion, error) {
	text := strings.TrimLeft(req.CurrentText, " \t")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	limit := maxCandidates(req)

	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool)
	var out []promptline.Suggestion
	for i := len(h.recency) - 1; i >= 0 && len(out) < limit; i-- {
		cmd := h.recency[i]
		if cmd != text && strings.HasPrefix(cmd, text) {
			seen[cmd] = true
			out = append(out, Line{Text: cmd})
		}
	}

	if len(out) >= limit || len(text) < minSimilarQuery || h.graph.Len() == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := trigramVector(text)
	for _, n := range h.graph.Search(query, limit) {
		if len(out) >= limit {
			break
		}
		cmd := h.commands[n.Key]
		if cmd == "" || cmd == text || seen[cmd] {
			continue
		}
		if hnsw.CosineDistance(query, n.Value) > maxSimilarDistance {
			continue
		}
		seen[cmd] = true
		out = append(out, Line{Text: cmd})
	}
	return out, nil
}

// trigramVector hashes the character trigrams of s into a unit vector.
func trigramVector(s string) []float32 {
	vec := make([]float32, trigramDims)
	runes := []rune(" " + strings.ToLower(s) + " ")
	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		vec[h.Sum32()%trigramDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func hashCommand(cmd string) string {
	h := sha256.Sum256([]byte(cmd))
	return fmt.Sprintf("%x", h)
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
