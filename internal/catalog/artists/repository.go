package artists

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

// Repository persists artists.
type Repository interface {
	Create(ctx context.Context, artist Artist) (Artist, error)
	CreateBulk(ctx context.Context, artists []Artist) (int64, error)
	List(ctx context.Context, req catalog.ListRequest) ([]Artist, int, error)
	Get(ctx context.Context, id int64) (Artist, error)
	Count(ctx context.Context, req catalog.CountRequest) (int, error)
	Update(ctx context.Context, artist Artist) error
	UpdateBulk(ctx context.Context, ids []int64, in Input, by int64) (int64, error)
	SoftDelete(ctx context.Context, id, by int64) error
	SoftDeleteMany(ctx context.Context, ids []int64, by int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

const artistColumns = `id, handle, name, title, meta_title, description, meta_description,
	born, died, is_active, is_deleted, created_at, updated_at, added_by, updated_by`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanArtist(row pgx.Row) (Artist, error) {
	var a Artist
	err := row.Scan(&a.ID, &a.Handle, &a.Name, &a.Title, &a.MetaTitle, &a.Description,
		&a.MetaDescription, &a.Born, &a.Died, &a.IsActive, &a.IsDeleted,
		&a.CreatedAt, &a.UpdatedAt, &a.AddedBy, &a.UpdatedBy)
	return a, err
}

func (r *repository) Create(ctx context.Context, artist Artist) (Artist, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO artists (handle, name, title, meta_title, description, meta_description,
		   born, died, is_active, is_deleted, created_at, updated_at, added_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now(), $11, $11)
		 RETURNING id, created_at, updated_at`,
		artist.Handle, artist.Name, artist.Title, artist.MetaTitle, artist.Description,
		artist.MetaDescription, artist.Born, artist.Died, artist.IsActive, artist.IsDeleted,
		artist.AddedBy).
		Scan(&artist.ID, &artist.CreatedAt, &artist.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Artist{}, shared.ErrDuplicate
		}
		return Artist{}, shared.AsStoreUnavailable(err)
	}
	return artist, nil
}

func (r *repository) CreateBulk(ctx context.Context, artists []Artist) (int64, error) {
	batch := &pgx.Batch{}
	for _, artist := range artists {
		batch.Queue(
			`INSERT INTO artists (handle, name, title, meta_title, description, meta_description,
			   born, died, is_active, is_deleted, created_at, updated_at, added_by, updated_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now(), $11, $11)`,
			artist.Handle, artist.Name, artist.Title, artist.MetaTitle, artist.Description,
			artist.MetaDescription, artist.Born, artist.Died, artist.IsActive, artist.IsDeleted,
			artist.AddedBy)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range artists {
		tag, err := results.Exec()
		if err != nil {
			if db.IsUniqueViolation(err) {
				return inserted, shared.ErrDuplicate
			}
			return inserted, shared.AsStoreUnavailable(err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

func filterPredicates(search string, isActive *bool) []dbquery.Predicate {
	preds := []dbquery.Predicate{dbquery.Eq("is_deleted", false)}
	if isActive != nil {
		preds = append(preds, dbquery.Eq("is_active", *isActive))
	}
	return preds
}

// searchClause appends an OR match over name and handle.
func searchClause(where string, args []any, search string) (string, []any) {
	if search == "" {
		return where, args
	}
	n := strconv.Itoa(len(args) + 1)
	where += ` AND (name ILIKE $` + n + ` OR handle ILIKE $` + n + `)`
	return where, append(args, "%"+search+"%")
}

func (r *repository) List(ctx context.Context, req catalog.ListRequest) ([]Artist, int, error) {
	opts := req.Options.Normalize()
	where, args := dbquery.Build(1, filterPredicates(req.Search, req.IsActive)...)
	where, args = searchClause(where, args, req.Search)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM artists WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}

	query := `SELECT ` + artistColumns + ` FROM artists WHERE ` + where +
		` ORDER BY ` + sortOrder(opts.SortBy, opts.SortDir) +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, 0, err
		}
		artists = append(artists, a)
	}
	return artists, total, shared.AsStoreUnavailable(rows.Err())
}

func (r *repository) Get(ctx context.Context, id int64) (Artist, error) {
	a, err := scanArtist(r.pool.QueryRow(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE id = $1 AND NOT is_deleted`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Artist{}, shared.ErrNotFound
		}
		return Artist{}, shared.AsStoreUnavailable(err)
	}
	return a, nil
}

func (r *repository) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	where, args := dbquery.Build(1, filterPredicates(req.Search, req.IsActive)...)
	where, args = searchClause(where, args, req.Search)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM artists WHERE `+where, args...).Scan(&total); err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return total, nil
}

func (r *repository) Update(ctx context.Context, artist Artist) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE artists SET handle = $1, name = $2, title = $3, meta_title = $4,
		   description = $5, meta_description = $6, born = $7, died = $8,
		   is_active = $9, updated_at = now(), updated_by = $10
		 WHERE id = $11 AND NOT is_deleted`,
		artist.Handle, artist.Name, artist.Title, artist.MetaTitle, artist.Description,
		artist.MetaDescription, artist.Born, artist.Died, artist.IsActive,
		artist.UpdatedBy, artist.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return shared.AsStoreUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
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
	tag, err := r.pool.Exec(ctx,
		`UPDATE artists SET `+strings.Join(sets, ", ")+` WHERE `+where,
		append(args, whereArgs...)...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, shared.ErrDuplicate
		}
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
}

// patchClauses renders the provided fields of a partial update as SET
// clauses numbered from $1.
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
	if in.Born != nil {
		add("born", *in.Born)
	}
	if in.Died != nil {
		add("died", *in.Died)
	}
	if in.IsActive != nil {
		add("is_active", *in.IsActive)
	}
	return sets, args
}

func (r *repository) SoftDelete(ctx context.Context, id, by int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE artists SET is_deleted = true, updated_at = now(), updated_by = $1
		 WHERE id = $2 AND NOT is_deleted`, by, id)
	if err != nil {
		return shared.AsStoreUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
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
	tag, err := r.pool.Exec(ctx,
		`UPDATE artists SET is_deleted = true, updated_at = now(), updated_by = $1 WHERE `+where,
		append([]any{by}, args...)...)
	if err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM artists WHERE id = $1`, id)
	if err != nil {
		return shared.AsStoreUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM artists WHERE `+where, args...)
	if err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
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
