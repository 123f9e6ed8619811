package client

import (
	"context"
	"errors"
	"sync"

	"github.com/sakif/recipe-share/internal/model"
)

// ErrSuperseded is returned for a search that a newer one replaced. Its
// results, if any arrived, are dropped.
var ErrSuperseded = errors.New("client: search superseded by a newer one")

type searchFunc func(context.Context, model.FilterCriteria) ([]model.RecipeView, error)

// Searcher runs searches where only the latest request counts. Starting a
// search cancels the one in flight, and every search is tagged with a
// sequence number so a response that arrives after a newer search started
// is discarded even if cancellation came too late.
type Searcher struct {
	search searchFunc

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewSearcher(c *Client) *Searcher {
	return &Searcher{search: c.Search}
}

// Search runs criteria and returns its results, or ErrSuperseded when a
// later call to Search started before this one finished. Safe for
// concurrent use.
func (s *Searcher) Search(ctx context.Context, criteria model.FilterCriteria) ([]model.RecipeView, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	views, err := s.search(ctx, criteria)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Latest is the sequence number of the most recently started search.
func (s *Searcher) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}
