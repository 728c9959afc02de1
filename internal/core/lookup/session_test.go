package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type fakeBackend struct {
	pages      map[int]*Page
	labels     map[string]string
	resolveErr error
	fetches    int
	// hook runs after the fetch result is produced but before it returns,
	// so tests can interleave a competing request.
	hook func()
}

func (f *fakeBackend) Fetch(ctx context.Context, src Source, owner uuid.UUID, query string, page int) (*Page, error) {
	f.fetches++
	p, ok := f.pages[page]
	if !ok {
		return &Page{Options: []Option{}}, nil
	}
	if f.hook != nil {
		hook := f.hook
		f.hook = nil
		hook()
	}
	return p, nil
}

func (f *fakeBackend) ResolveLabel(ctx context.Context, src Source, owner uuid.UUID, value string) (Option, error) {
	if f.resolveErr != nil {
		return Option{}, f.resolveErr
	}
	label, ok := f.labels[value]
	if !ok {
		return Option{}, errors.New("not found")
	}
	return Option{Value: value, Label: label}, nil
}

func testSource() Source {
	return Source{Collection: "clients", ValueKey: "id", LabelKey: "name", SearchKeys: []string{"name"}, PageSize: 2}
}

func TestSession_QueryAndLoadMore(t *testing.T) {
	backend := &fakeBackend{pages: map[int]*Page{
		1: {Options: []Option{{Value: "a", Label: "Alpha"}, {Value: "b", Label: "Beta"}}, HasMore: true},
		2: {Options: []Option{{Value: "b", Label: "Beta"}, {Value: "c", Label: "Carga"}}, HasMore: false},
	}}
	s := NewSession(backend, testSource(), uuid.Nil)

	if err := s.SetQuery(t.Context(), ""); err != nil {
		t.Fatal(err)
	}
	if len(s.Options()) != 2 || !s.HasMore() {
		t.Fatalf("first page: options=%v hasMore=%v", s.Options(), s.HasMore())
	}

	if err := s.LoadMore(t.Context()); err != nil {
		t.Fatal(err)
	}
	// "b" appears on both pages and must be de-duplicated.
	if len(s.Options()) != 3 {
		t.Errorf("expected 3 de-duplicated options, got %v", s.Options())
	}
	if s.HasMore() {
		t.Error("expected end of result set")
	}
}

func TestSession_LoadMoreAtEndIsNoOp(t *testing.T) {
	backend := &fakeBackend{pages: map[int]*Page{
		1: {Options: []Option{{Value: "a", Label: "Alpha"}}, HasMore: false},
	}}
	s := NewSession(backend, testSource(), uuid.Nil)

	if err := s.SetQuery(t.Context(), ""); err != nil {
		t.Fatal(err)
	}
	before := len(s.Options())
	fetchesBefore := backend.fetches

	if err := s.LoadMore(t.Context()); err != nil {
		t.Fatal(err)
	}
	if len(s.Options()) != before {
		t.Errorf("load more at end changed options: %v", s.Options())
	}
	if backend.fetches != fetchesBefore {
		t.Error("load more at end should not fetch")
	}
}

func TestSession_StaleResponseDiscarded(t *testing.T) {
	backend := &fakeBackend{pages: map[int]*Page{
		1: {Options: []Option{{Value: "stale", Label: "Stale"}}, HasMore: false},
	}}
	s := NewSession(backend, testSource(), uuid.Nil)

	// While the first request is in flight, a newer one is issued; the
	// first response arrives after and must not overwrite state.
	backend.hook = func() {
		s.seq.Add(1)
	}

	if err := s.SetQuery(t.Context(), "old"); err != nil {
		t.Fatal(err)
	}
	if len(s.Options()) != 0 {
		t.Errorf("stale response should be discarded, got %v", s.Options())
	}
}

func TestSession_ResolveDefault(t *testing.T) {
	backend := &fakeBackend{labels: map[string]string{"v1": "Volvo FH16"}}
	s := NewSession(backend, testSource(), uuid.Nil)

	s.ResolveDefault(t.Context(), "v1")
	sel, ok := s.Selected()
	if !ok || sel.Label != "Volvo FH16" {
		t.Errorf("expected resolved selection, got %v %v", sel, ok)
	}
}

func TestSession_ResolveDefaultSoftFailure(t *testing.T) {
	backend := &fakeBackend{resolveErr: errors.New("connection refused")}
	s := NewSession(backend, testSource(), uuid.Nil)

	s.ResolveDefault(t.Context(), "v1")
	if _, ok := s.Selected(); ok {
		t.Error("failed resolution should leave the session unselected")
	}
}

func TestSession_Select(t *testing.T) {
	backend := &fakeBackend{pages: map[int]*Page{
		1: {Options: []Option{{Value: "a", Label: "Alpha"}}},
	}}
	s := NewSession(backend, testSource(), uuid.Nil)
	if err := s.SetQuery(t.Context(), ""); err != nil {
		t.Fatal(err)
	}

	if !s.Select("a") {
		t.Error("expected select of loaded option to succeed")
	}
	if s.Select("missing") {
		t.Error("selecting an unloaded value should fail")
	}
}
