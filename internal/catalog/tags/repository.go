package tags

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalog "github.com/vinyldesk/vinyldesk/internal/catalog/shared"
	"github.com/vinyldesk/vinyldesk/internal/platform/db"
	"github.com/vinyldesk/vinyldesk/internal/platform/dbquery"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// Repository persists tags.
type Repository interface {
	Create(ctx context.Context, tag Tag) (Tag, error)
	CreateBulk(ctx context.Context, tags []Tag) (int64, error)
	List(ctx context.Context, req catalog.ListRequest) ([]Tag, int, error)
	Get(ctx context.Context, id int64) (Tag, error)
	Count(ctx context.Context, req catalog.CountRequest) (int, error)
	Update(ctx context.Context, tag Tag) error
	UpdateBulk(ctx context.Context, ids []int64, in Input, by int64) (int64, error)
	SoftDelete(ctx context.Context, id, by int64) error
	SoftDeleteMany(ctx context.Context, ids []int64, by int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

const tagColumns = `id, handle, name, title, meta_title, description, meta_description,
	body, is_active, is_deleted, created_at, updated_at, added_by, updated_by`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanTag(row pgx.Row) (Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.Handle, &t.Name, &t.Title, &t.MetaTitle, &t.Description,
		&t.MetaDescription, &t.Body, &t.IsActive, &t.IsDeleted,
		&t.CreatedAt, &t.UpdatedAt, &t.AddedBy, &t.UpdatedBy)
	return t, err
}

func (r *repository) Create(ctx context.Context, tag Tag) (Tag, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tags (handle, name, title, meta_title, description, meta_description,
		   body, is_active, is_deleted, created_at, updated_at, added_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now(), $10, $10)
		 RETURNING id, created_at, updated_at`,
		tag.Handle, tag.Name, tag.Title, tag.MetaTitle, tag.Description,
		tag.MetaDescription, tag.Body, tag.IsActive, tag.IsDeleted, tag.AddedBy).
		Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Tag{}, shared.ErrDuplicate
		}
		return Tag{}, shared.AsStoreUnavailable(err)
	}
	return tag, nil
}

func (r *repository) CreateBulk(ctx context.Context, tags []Tag) (int64, error) {
	batch := &pgx.Batch{}
	for _, tag := range tags {
		batch.Queue(
			`INSERT INTO tags (handle, name, title, meta_title, description, meta_description,
			   body, is_active, is_deleted, created_at, updated_at, added_by, updated_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now(), $10, $10)`,
			tag.Handle, tag.Name, tag.Title, tag.MetaTitle, tag.Description,
			tag.MetaDescription, tag.Body, tag.IsActive, tag.IsDeleted, tag.AddedBy)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range tags {
		tagResult, err := results.Exec()
		if err != nil {
			if db.IsUniqueViolation(err) {
				return inserted, shared.ErrDuplicate
			}
			return inserted, shared.AsStoreUnavailable(err)
		}
		inserted += tagResult.RowsAffected()
	}
	return inserted, nil
}

func filterPredicates(isActive *bool) []dbquery.Predicate {
	preds := []dbquery.Predicate{dbquery.Eq("is_deleted", false)}
	if isActive != nil {
		preds = append(preds, dbquery.Eq("is_active", *isActive))
	}
	return preds
}

func searchClause(where string, args []any, search string) (string, []any) {
	if search == "" {
		return where, args
	}
	n := strconv.Itoa(len(args) + 1)
	where += ` AND (name ILIKE $` + n + ` OR handle ILIKE $` + n + `)`
	return where, append(args, "%"+search+"%")
}

func (r *repository) List(ctx context.Context, req catalog.ListRequest) ([]Tag, int, error) {
	opts := req.Options.Normalize()
	where, args := dbquery.Build(1, filterPredicates(req.IsActive)...)
	where, args = searchClause(where, args, req.Search)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tags WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}

	query := `SELECT ` + tagColumns + ` FROM tags WHERE ` + where +
		` ORDER BY ` + sortOrder(opts.SortBy, opts.SortDir) +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, 0, err
		}
		tags = append(tags, t)
	}
	return tags, total, shared.AsStoreUnavailable(rows.Err())
}

func (r *repository) Get(ctx context.Context, id int64) (Tag, error) {
	t, err := scanTag(r.pool.QueryRow(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = $1 AND NOT is_deleted`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tag{}, shared.ErrNotFound
		}
		return Tag{}, shared.AsStoreUnavailable(err)
	}
	return t, nil
}

func (r *repository) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	where, args := dbquery.Build(1, filterPredicates(req.IsActive)...)
	where, args = searchClause(where, args, req.Search)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tags WHERE `+where, args...).Scan(&total); err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return total, nil
}

func (r *repository) Update(ctx context.Context, tag Tag) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE tags SET handle = $1, name = $2, title = $3, meta_title = $4,
		   description = $5, meta_description = $6, body = $7, is_active = $8,
		   updated_at = now(), updated_by = $9
		 WHERE id = $10 AND NOT is_deleted`,
		tag.Handle, tag.Name, tag.Title, tag.MetaTitle, tag.Description,
		tag.MetaDescription, tag.Body, tag.IsActive, tag.UpdatedBy, tag.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return shared.AsStoreUnavailable(err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateBulk(ctx context.Context, ids []int64, in Input, by int64) (int64, error) {
	sets, args := patchClauses(in)
	if len(sets) == 0 {
		return 0, nil
	}
	args = append(args, by)
	sets = append(sets, "updated_by = $"+strconv.Itoa(len(args)))
	sets = append(sets, "updated_at = now()")

	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}
	where, whereArgs := dbquery.Build(len(args)+1,
		dbquery.In("id", idArgs...),
		dbquery.Eq("is_deleted", false),
	)
	result, err := r.pool.Exec(ctx,
		`UPDATE tags SET `+strings.Join(sets, ", ")+` WHERE `+where,
		append(args, whereArgs...)...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, shared.ErrDuplicate
		}
		return 0, shared.AsStoreUnavailable(err)
	}
	return result.RowsAffected(), nil
}

func patchClauses(in Input) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if in.Handle != nil {
		add("handle", *in.Handle)
	}
	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Title != nil {
		add("title", *in.Title)
	}
	if in.MetaTitle != nil {
		add("meta_title", *in.MetaTitle)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.MetaDescription != nil {
		add("meta_description", *in.MetaDescription)
	}
	if in.Body != nil {
		add("body", *in.Body)
	}
	if in.IsActive != nil {
		add("is_active", *in.IsActive)
	}
	return sets, args
}

func (r *repository) SoftDelete(ctx context.Context, id, by int64) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE tags SET is_deleted = true, updated_at = now(), updated_by = $1
		 WHERE id = $2 AND NOT is_deleted`, by, id)
	if err != nil {
		return shared.AsStoreUnavailable(err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDeleteMany(ctx context.Context, ids []int64, by int64) (int64, error) {
	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}
	where, args := dbquery.Build(2, dbquery.In("id", idArgs...), dbquery.Eq("is_deleted", false))
	result, err := r.pool.Exec(ctx,
		`UPDATE tags SET is_deleted = true, updated_at = now(), updated_by = $1 WHERE `+where,
		append([]any{by}, args...)...)
	if err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return result.RowsAffected(), nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return shared.AsStoreUnavailable(err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}
	where, args := dbquery.Build(1, dbquery.In("id", idArgs...))
	result, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE `+where, args...)
	if err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return result.RowsAffected(), nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "handle":
		return "handle " + dir
	case "name":
		return "name " + dir
	case "created_at", "createdAt":
		return "created_at " + dir
	default:
		return "id " + dir
	}
}
