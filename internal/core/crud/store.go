package crud

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hauldesk/hauldesk/internal/storage/postgres"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrNoSession = errors.New("no session user for scoped store")
)

// MissingOwnerPolicy decides what a scoped store does when no session user
// is supplied.
type MissingOwnerPolicy int

const (
	MissingOwnerError MissingOwnerPolicy = iota
	MissingOwnerEmpty
)

type Order struct {
	Key  string
	Desc bool
}

// Options binds a Store to one collection of the records table.
type Options struct {
	Collection string
	// SearchKeys are the data keys the free-text search matches across.
	SearchKeys []string
	// DefaultOrder applies when a list request names no order key.
	DefaultOrder Order
	// PerPage is the default page size; list requests may override it.
	PerPage int
	// SoftDelete makes Remove stamp deleted_at instead of deleting the row.
	SoftDelete bool
	// Scoped constrains every query to rows owned by the session user.
	Scoped       bool
	MissingOwner MissingOwnerPolicy
	// AttachOwner stamps the session user onto created rows.
	AttachOwner bool
	// Transform, when set, rewrites payloads before create and update.
	Transform func(map[string]any) map[string]any
}

type Record struct {
	ID        uuid.UUID      `json:"id"`
	OwnerID   *uuid.UUID     `json:"owner_id,omitempty"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty"`
}

// ListParams carries pagination, filtering, and ordering for List. Page is
// 1-based. Filters are equality constraints (slice values become IN sets),
// Match are case-insensitive partial matches, Search matches across the
// store's SearchKeys.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
	Filters map[string]any
	Match   map[string]string
	Order   *Order
}

type ListResult struct {
	Records []*Record `json:"data"`
	Total   int       `json:"total"`
}

type Store struct {
	db   *postgres.Client
	opts Options
}

func NewStore(db *postgres.Client, opts Options) *Store {
	if opts.PerPage <= 0 {
		opts.PerPage = 20
	}
	if opts.DefaultOrder.Key == "" {
		opts.DefaultOrder = Order{Key: "created_at", Desc: true}
	}
	return &Store{db: db, opts: opts}
}

func (s *Store) Collection() string {
	return s.opts.Collection
}

const recordColumns = "id, user_id, data, created_at, updated_at, deleted_at"

func (s *Store) List(ctx context.Context, owner uuid.UUID, params ListParams) (*ListResult, error) {
	if s.opts.Scoped && owner == uuid.Nil {
		if s.opts.MissingOwner == MissingOwnerEmpty {
			return &ListResult{Records: []*Record{}}, nil
		}
		return nil, ErrNoSession
	}

	where, args := s.buildListWhere(owner, params)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM records WHERE %s", where)
	var total int
	if err := s.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	perPage := params.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = s.opts.PerPage
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	query := fmt.Sprintf(`
		SELECT %s
		FROM records
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		recordColumns, where, s.orderClause(params.Order), len(args)+1, len(args)+2)
	args = append(args, perPage, offset)

	rows, err := s.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*Record{}
	}

	return &ListResult{Records: records, Total: total}, nil
}

func (s *Store) GetByID(ctx context.Context, owner uuid.UUID, id uuid.UUID) (*Record, error) {
	if s.opts.Scoped && owner == uuid.Nil {
		if s.opts.MissingOwner == MissingOwnerEmpty {
			return nil, ErrNotFound
		}
		return nil, ErrNoSession
	}

	// Soft-deleted rows stay reachable by id; only listings exclude them.
	query := fmt.Sprintf(`SELECT %s FROM records WHERE collection = $1 AND id = $2`, recordColumns)
	args := []any{s.opts.Collection, id}
	if s.opts.Scoped {
		query += " AND user_id = $3"
		args = append(args, owner)
	}

	rec, err := scanRecord(s.db.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *Store) Create(ctx context.Context, owner uuid.UUID, payload map[string]any) (*Record, error) {
	if s.opts.Scoped && owner == uuid.Nil {
		return nil, ErrNoSession
	}

	if s.opts.Transform != nil {
		payload = s.opts.Transform(payload)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	rec := &Record{ID: uuid.New(), Data: payload}
	var ownerArg any
	if s.opts.AttachOwner && owner != uuid.Nil {
		rec.OwnerID = &owner
		ownerArg = owner
	}

	query := `
		INSERT INTO records (id, collection, user_id, data)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	if err := s.db.DB.QueryRowContext(ctx, query,
		rec.ID, s.opts.Collection, ownerArg, data,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}

	recordInserts.WithLabelValues(s.opts.Collection).Inc()
	return rec, nil
}

func (s *Store) Update(ctx context.Context, owner uuid.UUID, id uuid.UUID, patch map[string]any) (*Record, error) {
	if s.opts.Scoped && owner == uuid.Nil {
		return nil, ErrNoSession
	}

	if s.opts.Transform != nil {
		patch = s.opts.Transform(patch)
	}

	data, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE records
		SET data = data || $3::jsonb, updated_at = CURRENT_TIMESTAMP
		WHERE collection = $1 AND id = $2%s
		RETURNING %s`, s.scopeSuffix(4), recordColumns)

	args := []any{s.opts.Collection, id, data}
	if s.opts.Scoped {
		args = append(args, owner)
	}

	rec, err := scanRecord(s.db.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	recordUpdates.WithLabelValues(s.opts.Collection).Inc()
	return rec, nil
}

// Remove soft-deletes when the store is configured for it, otherwise issues
// a physical delete. Either way a missing row reports ErrNotFound.
func (s *Store) Remove(ctx context.Context, owner uuid.UUID, id uuid.UUID) error {
	if s.opts.Scoped && owner == uuid.Nil {
		return ErrNoSession
	}

	query := s.removeQuery()
	args := []any{s.opts.Collection, id}
	if s.opts.Scoped {
		args = append(args, owner)
	}

	res, err := s.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	recordDeletes.WithLabelValues(s.opts.Collection).Inc()
	return nil
}

func (s *Store) removeQuery() string {
	if s.opts.SoftDelete {
		return fmt.Sprintf(`UPDATE records SET deleted_at = CURRENT_TIMESTAMP WHERE collection = $1 AND id = $2 AND deleted_at IS NULL%s`, s.scopeSuffix(3))
	}
	return fmt.Sprintf(`DELETE FROM records WHERE collection = $1 AND id = $2%s`, s.scopeSuffix(3))
}

func (s *Store) scopeSuffix(argIndex int) string {
	if s.opts.Scoped {
		return fmt.Sprintf(" AND user_id = $%d", argIndex)
	}
	return ""
}

func (s *Store) buildListWhere(owner uuid.UUID, params ListParams) (string, []any) {
	whereClause := []string{"collection = $1"}
	args := []any{s.opts.Collection}
	argIndex := 2

	if s.opts.SoftDelete {
		whereClause = append(whereClause, "deleted_at IS NULL")
	}

	if s.opts.Scoped {
		whereClause = append(whereClause, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, owner)
		argIndex++
	}

	for _, key := range sortedKeys(params.Filters) {
		value := params.Filters[key]
		if arr, ok := value.([]any); ok {
			if len(arr) == 0 {
				continue
			}
			placeholders := make([]string, len(arr))
			for i, v := range arr {
				valueJSON, _ := json.Marshal(v)
				placeholders[i] = fmt.Sprintf("$%d::jsonb", argIndex)
				args = append(args, string(valueJSON))
				argIndex++
			}
			whereClause = append(whereClause, fmt.Sprintf("data->'%s' IN (%s)", key, strings.Join(placeholders, ",")))
			continue
		}
		valueJSON, _ := json.Marshal(value)
		whereClause = append(whereClause, fmt.Sprintf("data->'%s' = $%d::jsonb", key, argIndex))
		args = append(args, string(valueJSON))
		argIndex++
	}

	for _, key := range sortedMatchKeys(params.Match) {
		whereClause = append(whereClause, fmt.Sprintf("data->>'%s' ILIKE $%d", key, argIndex))
		args = append(args, "%"+params.Match[key]+"%")
		argIndex++
	}

	if params.Search != "" && len(s.opts.SearchKeys) > 0 {
		var ors []string
		for _, key := range s.opts.SearchKeys {
			ors = append(ors, fmt.Sprintf("data->>'%s' ILIKE $%d", key, argIndex))
			args = append(args, "%"+params.Search+"%")
			argIndex++
		}
		whereClause = append(whereClause, "("+strings.Join(ors, " OR ")+")")
	}

	return strings.Join(whereClause, " AND "), args
}

// Order keys are interpolated into the clause, so only plain identifiers
// are accepted; anything else falls back to the default order.
var orderKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func (s *Store) orderClause(order *Order) string {
	if order == nil || !orderKeyPattern.MatchString(order.Key) {
		order = &s.opts.DefaultOrder
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	switch order.Key {
	case "created_at", "updated_at", "id":
		return fmt.Sprintf("%s %s", order.Key, dir)
	default:
		return fmt.Sprintf("data->>'%s' %s", order.Key, dir)
	}
}

// Filter keys are iterated in sorted order so built queries are stable.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMatchKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scanRecord(row *sql.Row) (*Record, error) {
	rec := &Record{}
	var data []byte
	var ownerID uuid.NullUUID
	var deletedAt sql.NullTime

	err := row.Scan(&rec.ID, &ownerID, &data, &rec.CreatedAt, &rec.UpdatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if ownerID.Valid {
		rec.OwnerID = &ownerID.UUID
	}
	if deletedAt.Valid {
		rec.DeletedAt = &deletedAt.Time
	}
	json.Unmarshal(data, &rec.Data)
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		rec := &Record{}
		var data []byte
		var ownerID uuid.NullUUID
		var deletedAt sql.NullTime

		if err := rows.Scan(&rec.ID, &ownerID, &data, &rec.CreatedAt, &rec.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}

		if ownerID.Valid {
			rec.OwnerID = &ownerID.UUID
		}
		if deletedAt.Valid {
			rec.DeletedAt = &deletedAt.Time
		}
		json.Unmarshal(data, &rec.Data)
		records = append(records, rec)
	}
	return records, rows.Err()
}
