package suggest

import (
	"context"
	"log/slog"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/history"
)

// Engine is the local suggestion pipeline: history lines followed by word
// completions, optionally behind a TTL cache. It owns the history log that
// seeds the history source.
type Engine struct {
	cfg     *promptline.Config
	log     *history.Log
	history *HistorySource
	cache   *Cache
	src     Source
}

// NewEngine builds an engine from cfg, importing the shell history file when
// the config allows it. A nil cfg uses the defaults.
func NewEngine(cfg *promptline.Config) *Engine {
	if cfg == nil {
		cfg = promptline.DefaultConfig()
	}

	e := &Engine{
		cfg:     cfg,
		log:     history.NewLog(cfg.History.MaxEntries),
		history: NewHistorySource(),
	}

	if promptline.ImportShellHistory(cfg) {
		path := promptline.ResolveHistoryFile(cfg)
		if path == "" {
			path = history.ResolveShellHistoryFile()
		}
		if path != "" {
			n, err := e.log.Import(path, cfg.History.MaxEntries)
			if err != nil {
				slog.Warn("history import failed", "error", err)
			} else {
				slog.Debug("history imported", "path", path, "commands", n)
			}
		}
	}
	e.history.Add(e.log.Entries()...)
	slog.Debug("history source seeded", "commands", e.log.Len())

	e.src = Chain{e.history, WordSource{}}
	if ttl := promptline.CacheTTL(cfg); ttl > 0 {
		e.cache = NewCache(e.src, ttl, cfg.Suggest.CacheCapacity)
		e.src = e.cache
	}
	return e
}

// Suggest implements Source. A request without a candidate limit gets the
// configured one.
func (e *Engine) Suggest(ctx context.Context, req *promptline.Request) ([]promptline.Suggestion, error) {
	if req.MaxCandidates <= 0 && e.cfg.Suggest.MaxCandidates > 0 {
		r := *req
		r.MaxCandidates = e.cfg.Suggest.MaxCandidates
		req = &r
	}
	return e.src.Suggest(ctx, req)
}

// Record adds an executed command to the history log and the history source.
func (e *Engine) Record(cmd string) {
	e.log.Append(cmd)
	e.history.Add(cmd)
	if e.cache != nil {
		e.cache.Invalidate()
	}
}

// History returns the engine's history log.
func (e *Engine) History() *history.Log {
	return e.log
}

// Close releases the cache expiration loop.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}
