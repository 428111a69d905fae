// Package search is the natural-language file search facade: it parses a
// query into ranking criteria and runs the ranker over the configured
// folders. Session adds interactive semantics, where a newer query cancels
// any still-running older one.
package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"localfind/internal/config"
	"localfind/internal/queryparse"
	"localfind/internal/ranker"
)

// ErrSuperseded reports that a newer query cancelled this one. Its results
// must be discarded, not rendered.
var ErrSuperseded = errors.New("query superseded by a newer one")

// Engine runs one-shot searches against a fixed configuration.
type Engine struct {
	cfg *config.Config
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Search parses q relative to now and returns ranked hits.
func (e *Engine) Search(ctx context.Context, q string, now time.Time) ([]ranker.ScoredHit, queryparse.Parsed, error) {
	parsed := queryparse.Parse(q, now)
	log.Debug().
		Strs("keywords", parsed.Keywords).
		Bool("window", parsed.Window != nil).
		Strs("exts", parsed.Extensions).
		Msg("query parsed")

	hits, err := ranker.Rank(ctx, ranker.Params{
		Roots:      e.cfg.Folders,
		Keywords:   parsed.Keywords,
		Phrase:     parsed.Phrase,
		AllowExts:  parsed.Extensions,
		Window:     parsed.Window,
		MaxResults: e.cfg.MaxResults,
		DenyDirs:   e.cfg.DenyDirs,
		Now:        now,
	})
	return hits, parsed, err
}

// Session serializes interactive queries: issuing a new one cancels the
// previous one, whose caller gets ErrSuperseded instead of stale results.
type Session struct {
	engine *Engine

	gen    atomic.Uint64
	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSession(engine *Engine) *Session {
	return &Session{engine: engine}
}

// Ticket identifies one query within a session.
type Ticket uint64

// Begin registers a new query, cancelling any still-running older one, and
// returns its ticket.
func (s *Session) Begin() Ticket {
	t := Ticket(s.gen.Add(1))
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	return t
}

// Superseded reports whether a newer query began after t.
func (s *Session) Superseded(t Ticket) bool {
	return s.gen.Load() != uint64(t)
}

// Search runs q, cancelling any in-flight older query first.
func (s *Session) Search(ctx context.Context, q string) ([]ranker.ScoredHit, queryparse.Parsed, error) {
	ticket := s.Begin()

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	hits, parsed, err := s.engine.Search(ctx, q, time.Now())
	if errors.Is(err, context.Canceled) && s.Superseded(ticket) {
		return nil, parsed, ErrSuperseded
	}
	return hits, parsed, err
}
