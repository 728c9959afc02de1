package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hauldesk/hauldesk/internal/storage/postgres"
	"github.com/hauldesk/hauldesk/internal/storage/rediscache"
)

// Totals are the derived figures the dashboard shows for a collection:
// row count plus sum and average of one numeric field.
type Totals struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
}

// Request names the aggregation. Field and DateKey are interpolated into
// the query; callers must resolve them against the collection's configured
// summary fields, never from raw client input.
type Request struct {
	Collection string
	Field      string
	DateKey    string
	Month      string // YYYY-MM, optional
	Owner      uuid.UUID
	Scoped     bool
}

const cacheTTL = time.Minute

type Service struct {
	db    *postgres.Client
	cache *rediscache.Cache
}

func NewService(db *postgres.Client, cache *rediscache.Cache) *Service {
	return &Service{db: db, cache: cache}
}

func (s *Service) Totals(ctx context.Context, req Request) (*Totals, error) {
	cacheKey := fmt.Sprintf("summary:%s:%s:%s:%s", req.Collection, req.Field, req.Month, req.Owner)
	var cached Totals
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COALESCE(SUM((data->>'%s')::numeric), 0),
		       COALESCE(AVG((data->>'%s')::numeric), 0)
		FROM records
		WHERE collection = $1 AND deleted_at IS NULL AND data ? '%s'`,
		req.Field, req.Field, req.Field)
	args := []any{req.Collection}

	if req.Scoped {
		query += fmt.Sprintf(" AND user_id = $%d", len(args)+1)
		args = append(args, req.Owner)
	}
	if req.Month != "" && req.DateKey != "" {
		query += fmt.Sprintf(" AND data->>'%s' LIKE $%d", req.DateKey, len(args)+1)
		args = append(args, req.Month+"%")
	}

	totals := &Totals{}
	if err := s.db.DB.QueryRowContext(ctx, query, args...).Scan(&totals.Count, &totals.Sum, &totals.Avg); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cacheKey, totals, cacheTTL)
	return totals, nil
}
