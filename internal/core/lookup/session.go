package lookup

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Backend is the query surface a Session drives. *Fetcher implements it.
type Backend interface {
	Fetch(ctx context.Context, src Source, owner uuid.UUID, query string, page int) (*Page, error)
	ResolveLabel(ctx context.Context, src Source, owner uuid.UUID, value string) (Option, error)
}

// Session holds the state of one reference picker: the loaded options, the
// current selection, and a request sequence. Concurrent fetches race on the
// sequence: only the response matching the latest issued token is applied,
// stale responses are discarded.
type Session struct {
	backend Backend
	src     Source
	owner   uuid.UUID

	seq atomic.Uint64

	mu       sync.Mutex
	query    string
	page     int
	options  []Option
	hasMore  bool
	selected *Option
}

func NewSession(backend Backend, src Source, owner uuid.UUID) *Session {
	return &Session{backend: backend, src: src, owner: owner}
}

// ResolveDefault resolves the label of a preselected value, for edit forms.
// A failed resolution is logged and leaves the session unselected; the field
// can still be filled interactively.
func (s *Session) ResolveDefault(ctx context.Context, value string) {
	if value == "" {
		return
	}
	opt, err := s.backend.ResolveLabel(ctx, s.src, s.owner, value)
	if err != nil {
		log.Printf("lookup: resolving default %q in %s failed: %v", value, s.src.Collection, err)
		return
	}
	s.mu.Lock()
	s.selected = &opt
	s.mu.Unlock()
}

// SetQuery resets to the first page and fetches it for the given search
// text. Opening the picker is SetQuery with the current (possibly empty)
// text.
func (s *Session) SetQuery(ctx context.Context, query string) error {
	token := s.seq.Add(1)

	page, err := s.backend.Fetch(ctx, s.src, s.owner, query, 1)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq.Load() != token {
		return nil
	}
	s.query = query
	s.page = 1
	s.options = page.Options
	s.hasMore = page.HasMore
	return nil
}

// LoadMore appends the next page, de-duplicating by value against the
// options already loaded. At the end of the result set it is a no-op.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	query, nextPage := s.query, s.page+1
	s.mu.Unlock()

	token := s.seq.Add(1)

	page, err := s.backend.Fetch(ctx, s.src, s.owner, query, nextPage)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq.Load() != token {
		return nil
	}

	seen := make(map[string]bool, len(s.options))
	for _, opt := range s.options {
		seen[opt.Value] = true
	}
	for _, opt := range page.Options {
		if seen[opt.Value] {
			continue
		}
		s.options = append(s.options, opt)
	}
	s.page = nextPage
	s.hasMore = page.HasMore
	return nil
}

// Select picks a loaded option by value. Returns false when the value is
// not among the loaded options.
func (s *Session) Select(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.options {
		if s.options[i].Value == value {
			s.selected = &s.options[i]
			return true
		}
	}
	return false
}

func (s *Session) Options() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Option, len(s.options))
	copy(out, s.options)
	return out
}

func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

func (s *Session) Selected() (Option, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return Option{}, false
	}
	return *s.selected, true
}
