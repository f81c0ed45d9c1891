package images

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

// Repository persists images.
type Repository interface {
	Create(ctx context.Context, image Image) (Image, error)
	CreateBulk(ctx context.Context, images []Image) (int64, error)
	List(ctx context.Context, req catalog.ListRequest) ([]Image, int, error)
	Get(ctx context.Context, id string) (Image, error)
	Count(ctx context.Context, req catalog.CountRequest) (int, error)
	Update(ctx context.Context, image Image) error
	UpdateBulk(ctx context.Context, ids []string, in Input, by int64) (int64, error)
	SoftDelete(ctx context.Context, id string, by int64) error
	SoftDeleteMany(ctx context.Context, ids []string, by int64) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

const imageColumns = `id, src, alt_text, height, width, is_active, is_deleted,
	created_at, updated_at, added_by, updated_by`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanImage(row pgx.Row) (Image, error) {
	var img Image
	err := row.Scan(&img.ID, &img.Src, &img.AltText, &img.Height, &img.Width,
		&img.IsActive, &img.IsDeleted, &img.CreatedAt, &img.UpdatedAt, &img.AddedBy, &img.UpdatedBy)
	return img, err
}

func (r *repository) Create(ctx context.Context, image Image) (Image, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO images (id, src, alt_text, height, width, is_active, is_deleted,
		   created_at, updated_at, added_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now(), $8, $8)
		 RETURNING created_at, updated_at`,
		image.ID, image.Src, image.AltText, image.Height, image.Width,
		image.IsActive, image.IsDeleted, image.AddedBy).
		Scan(&image.CreatedAt, &image.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Image{}, shared.ErrDuplicate
		}
		return Image{}, shared.AsStoreUnavailable(err)
	}
	return image, nil
}

func (r *repository) CreateBulk(ctx context.Context, images []Image) (int64, error) {
	batch := &pgx.Batch{}
	for _, image := range images {
		batch.Queue(
			`INSERT INTO images (id, src, alt_text, height, width, is_active, is_deleted,
			   created_at, updated_at, added_by, updated_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now(), $8, $8)`,
			image.ID, image.Src, image.AltText, image.Height, image.Width,
			image.IsActive, image.IsDeleted, image.AddedBy)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range images {
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
	where += ` AND (alt_text ILIKE $` + n + ` OR src ILIKE $` + n + `)`
	return where, append(args, "%"+search+"%")
}

func (r *repository) List(ctx context.Context, req catalog.ListRequest) ([]Image, int, error) {
	opts := req.Options.Normalize()
	where, args := dbquery.Build(1, filterPredicates(req.IsActive)...)
	where, args = searchClause(where, args, req.Search)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM images WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}

	query := `SELECT ` + imageColumns + ` FROM images WHERE ` + where +
		` ORDER BY ` + sortOrder(opts.SortBy, opts.SortDir) +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, 0, err
		}
		images = append(images, img)
	}
	return images, total, shared.AsStoreUnavailable(rows.Err())
}

func (r *repository) Get(ctx context.Context, id string) (Image, error) {
	img, err := scanImage(r.pool.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM images WHERE id = $1 AND NOT is_deleted`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Image{}, shared.ErrNotFound
		}
		return Image{}, shared.AsStoreUnavailable(err)
	}
	return img, nil
}

func (r *repository) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	where, args := dbquery.Build(1, filterPredicates(req.IsActive)...)
	where, args = searchClause(where, args, req.Search)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM images WHERE `+where, args...).Scan(&total); err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return total, nil
}

func (r *repository) Update(ctx context.Context, image Image) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE images SET src = $1, alt_text = $2, height = $3, width = $4,
		   is_active = $5, updated_at = now(), updated_by = $6
		 WHERE id = $7 AND NOT is_deleted`,
		image.Src, image.AltText, image.Height, image.Width,
		image.IsActive, image.UpdatedBy, image.ID)
	if err != nil {
		return shared.AsStoreUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateBulk(ctx context.Context, ids []string, in Input, by int64) (int64, error) {
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
		`UPDATE images SET `+strings.Join(sets, ", ")+` WHERE `+where,
		append(args, whereArgs...)...)
	if err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
}

func patchClauses(in Input) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if in.Src != nil {
		add("src", *in.Src)
	}
	if in.AltText != nil {
		add("alt_text", *in.AltText)
	}
	if in.Height != nil {
		add("height", *in.Height)
	}
	if in.Width != nil {
		add("width", *in.Width)
	}
	if in.IsActive != nil {
		add("is_active", *in.IsActive)
	}
	return sets, args
}

func (r *repository) SoftDelete(ctx context.Context, id string, by int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE images SET is_deleted = true, updated_at = now(), updated_by = $1
		 WHERE id = $2 AND NOT is_deleted`, by, id)
	if err != nil {
		return shared.AsStoreUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDeleteMany(ctx context.Context, ids []string, by int64) (int64, error) {
	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}
	where, args := dbquery.Build(2, dbquery.In("id", idArgs...), dbquery.Eq("is_deleted", false))
	tag, err := r.pool.Exec(ctx,
		`UPDATE images SET is_deleted = true, updated_at = now(), updated_by = $1 WHERE `+where,
		append([]any{by}, args...)...)
	if err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return shared.AsStoreUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}
	where, args := dbquery.Build(1, dbquery.In("id", idArgs...))
	tag, err := r.pool.Exec(ctx, `DELETE FROM images WHERE `+where, args...)
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
	case "src":
		return "src " + dir
	case "created_at", "createdAt":
		return "created_at " + dir
	default:
		return "created_at " + dir
	}
}
