package suggest

import (
	"context"
	"log/slog"

	"github.com/Paranoid-AF/promptline"
)

// DefaultMaxCandidates is used when the request does not specify a limit.
const DefaultMaxCandidates = 8

// Source produces suggestions for a prompt state. It matches prompt.Source.
type Source interface {
	Suggest(ctx context.Context, req *promptline.Request) ([]promptline.Suggestion, error)
}

// Chain queries its sources in order and concatenates their results,
// skipping suggestions whose Display text was already seen. A failing source
// is skipped; Chain fails only when every source fails.
type Chain []Source

// Suggest implements Source.
func (c Chain) Suggest(ctx context.Context, req *promptline.Request) ([]promptline.Suggestion, error) {
	limit := maxCandidates(req)
	seen := make(map[string]bool)
	var out []promptline.Suggestion
	var firstErr error
	failed := 0

	for _, src := range c {
		if len(out) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		got, err := src.Suggest(ctx, req)
		if err != nil {
			slog.Warn("suggestion source failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
			failed++
			continue
		}
		for _, s := range got {
			if len(out) >= limit {
				break
			}
			if seen[s.Display()] {
				continue
			}
			seen[s.Display()] = true
			out = append(out, s)
		}
	}

	if len(c) > 0 && failed == len(c) {
		return nil, firstErr
	}
	return out, nil
}

func maxCandidates(req *promptline.Request) int {
	if req.MaxCandidates > 0 {
		return req.MaxCandidates
	}
	return DefaultMaxCandidates
}
