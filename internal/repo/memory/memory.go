package memory

import (
	"sync"
	"sync/atomic"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/repo"
)

type entry struct {
	mu   sync.Mutex // serializes Apply/Set for this URL
	name string
	up   atomic.Bool
}

// Store is the in-memory StateStore. The map is only written in New, so
// lookups need no lock; each entry guards its own value.
type Store struct {
	entries map[string]*entry
	order   []string
}

var _ repo.StateStore = (*Store)(nil)

// New seeds one entry per target, all optimistically up.
func New(targets []domain.Target) *Store {
	s := &Store{
		entries: make(map[string]*entry, len(targets)),
		order:   make([]string, 0, len(targets)),
	}
	for _, t := range targets {
		if _, dup := s.entries[t.URL]; dup {
			continue
		}
		e := &entry{name: t.Name}
		e.up.Store(true)
		s.entries[t.URL] = e
		s.order = append(s.order, t.URL)
	}
	return s
}

func (s *Store) Get(url string) bool {
	e, ok := s.entries[url]
	if !ok {
		return true
	}
	return e.up.Load()
}

func (s *Store) Set(url string, up bool) {
	e, ok := s.entries[url]
	if !ok {
		return
	}
	e.mu.Lock()
	e.up.Store(up)
	e.mu.Unlock()
}

func (s *Store) Apply(url string, reachable bool, decide func(lastKnownUp bool)) {
	e, ok := s.entries[url]
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	// the store is updated even if decide panics
	defer e.up.Store(reachable)
	decide(e.up.Load())
}

func (s *Store) Snapshot() []domain.SiteState {
	out := make([]domain.SiteState, 0, len(s.order))
	for _, url := range s.order {
		e := s.entries[url]
		out = append(out, domain.SiteState{Name: e.name, URL: url, LastKnownUp: e.up.Load()})
	}
	return out
}

// Len reports how many targets the store tracks.
func (s *Store) Len() int { return len(s.order) }
