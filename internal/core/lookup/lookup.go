package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hauldesk/hauldesk/internal/core/crud"
	"github.com/hauldesk/hauldesk/internal/storage/postgres"
	"github.com/hauldesk/hauldesk/internal/storage/rediscache"
)

// Source describes how to look up foreign rows for a reference picker.
// ValueKey "id" means the record id; any other key reads from the record
// data.
type Source struct {
	Collection  string         `json:"collection"`
	ValueKey    string         `json:"value_key"`
	LabelKey    string         `json:"label_key"`
	SearchKeys  []string       `json:"search_keys,omitempty"`
	UserScoped  bool           `json:"user_scoped,omitempty"`
	ExtraFilter map[string]any `json:"extra_filter,omitempty"`
	PageSize    int            `json:"page_size,omitempty"`
}

func (s Source) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return 10
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Page struct {
	Options []Option `json:"options"`
	HasMore bool     `json:"has_more"`
}

const labelCacheTTL = 5 * time.Minute

// Fetcher issues lookup queries for any Source. Resolved labels go through
// the cache since edit forms resolve the same referenced rows repeatedly.
type Fetcher struct {
	db    *postgres.Client
	cache *rediscache.Cache
}

func NewFetcher(db *postgres.Client, cache *rediscache.Cache) *Fetcher {
	return &Fetcher{db: db, cache: cache}
}

func (f *Fetcher) store(src Source) *crud.Store {
	return crud.NewStore(f.db, crud.Options{
		Collection: src.Collection,
		SearchKeys: src.SearchKeys,
		// Ordered by label so the dropdown reads alphabetically. The
		// deleted filter is a no-op for collections that delete physically.
		DefaultOrder: crud.Order{Key: src.LabelKey},
		SoftDelete:   true,
		PerPage:      src.pageSize(),
		Scoped:       src.UserScoped,
		MissingOwner: crud.MissingOwnerEmpty,
	})
}

// Fetch returns one page of candidate options, label ascending, 1-based.
// A non-empty query matches case-insensitively across the source's search
// keys; extra filters apply as equality constraints.
func (f *Fetcher) Fetch(ctx context.Context, src Source, owner uuid.UUID, query string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	params := crud.ListParams{
		Page:    page,
		PerPage: src.pageSize(),
		Filters: src.ExtraFilter,
	}
	if query != "" && len(src.SearchKeys) > 0 {
		params.Search = query
	}

	res, err := f.store(src).List(ctx, owner, params)
	if err != nil {
		return nil, err
	}

	options := make([]Option, 0, len(res.Records))
	for _, rec := range res.Records {
		options = append(options, Option{
			Value: recordValue(rec, src),
			Label: recordLabel(rec, src),
		})
	}

	return &Page{
		Options: options,
		HasMore: page*src.pageSize() < res.Total,
	}, nil
}

// labelCacheKey carries the owner so a label cached for one user's row can
// never satisfy another user's lookup; a scoped miss must read the same as a
// nonexistent row.
func labelCacheKey(src Source, owner uuid.UUID, value string) string {
	return fmt.Sprintf("lookup:%s:%s:%s", src.Collection, owner, value)
}

// ResolveLabel looks up the display label for a known value, for edit forms
// where the selected row may not be in the first page of options.
func (f *Fetcher) ResolveLabel(ctx context.Context, src Source, owner uuid.UUID, value string) (Option, error) {
	cacheKey := labelCacheKey(src, owner, value)
	var cached Option
	if f.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	var rec *crud.Record
	if src.ValueKey == "" || src.ValueKey == "id" {
		id, err := uuid.Parse(value)
		if err != nil {
			return Option{}, fmt.Errorf("invalid lookup value %q: %w", value, err)
		}
		rec, err = f.store(src).GetByID(ctx, owner, id)
		if err != nil {
			return Option{}, err
		}
	} else {
		res, err := f.store(src).List(ctx, owner, crud.ListParams{
			Page:    1,
			PerPage: 1,
			Filters: map[string]any{src.ValueKey: value},
		})
		if err != nil {
			return Option{}, err
		}
		if len(res.Records) == 0 {
			return Option{}, crud.ErrNotFound
		}
		rec = res.Records[0]
	}

	opt := Option{Value: value, Label: recordLabel(rec, src)}
	f.cache.Set(ctx, cacheKey, opt, labelCacheTTL)
	return opt, nil
}

func recordValue(rec *crud.Record, src Source) string {
	if src.ValueKey == "" || src.ValueKey == "id" {
		return rec.ID.String()
	}
	return fmt.Sprint(rec.Data[src.ValueKey])
}

func recordLabel(rec *crud.Record, src Source) string {
	v, ok := rec.Data[src.LabelKey]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}
