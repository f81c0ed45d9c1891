package products

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

// Repository persists products.
type Repository interface {
	Create(ctx context.Context, product Product) (Product, error)
	CreateBulk(ctx context.Context, products []Product) (int64, error)
	List(ctx context.Context, req catalog.ListRequest) ([]Product, int, error)
	Get(ctx context.Context, id string) (Product, error)
	Count(ctx context.Context, req catalog.CountRequest) (int, error)
	Update(ctx context.Context, product Product) error
	UpdateBulk(ctx context.Context, ids []string, in Input, by int64) (int64, error)
	SoftDelete(ctx context.Context, id string, by int64) error
	SoftDeleteMany(ctx context.Context, ids []string, by int64) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

const productColumns = `id, handle, title, meta_title, description, meta_description, body,
	has_only_default_variant, options, metafields, is_active, is_deleted,
	created_at, updated_at, added_by, updated_by`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Handle, &p.Title, &p.MetaTitle, &p.Description,
		&p.MetaDescription, &p.Body, &p.HasOnlyDefaultVariant, &p.Options, &p.Metafields,
		&p.IsActive, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt, &p.AddedBy, &p.UpdatedBy)
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (id, handle, title, meta_title, description, meta_description,
		   body, has_only_default_variant, options, metafields, is_active, is_deleted,
		   created_at, updated_at, added_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now(), $13, $13)
		 RETURNING created_at, updated_at`,
		product.ID, product.Handle, product.Title, product.MetaTitle, product.Description,
		product.MetaDescription, product.Body, product.HasOnlyDefaultVariant, product.Options,
		product.Metafields, product.IsActive, product.IsDeleted, product.AddedBy).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Product{}, shared.ErrDuplicate
		}
		return Product{}, shared.AsStoreUnavailable(err)
	}
	return product, nil
}

func (r *repository) CreateBulk(ctx context.Context, products []Product) (int64, error) {
	batch := &pgx.Batch{}
	for _, product := range products {
		batch.Queue(
			`INSERT INTO products (id, handle, title, meta_title, description, meta_description,
			   body, has_only_default_variant, options, metafields, is_active, is_deleted,
			   created_at, updated_at, added_by, updated_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now(), $13, $13)`,
			product.ID, product.Handle, product.Title, product.MetaTitle, product.Description,
			product.MetaDescription, product.Body, product.HasOnlyDefaultVariant, product.Options,
			product.Metafields, product.IsActive, product.IsDeleted, product.AddedBy)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range products {
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
	where += ` AND (title ILIKE $` + n + ` OR handle ILIKE $` + n + `)`
	return where, append(args, "%"+search+"%")
}

func (r *repository) List(ctx context.Context, req catalog.ListRequest) ([]Product, int, error) {
	opts := req.Options.Normalize()
	where, args := dbquery.Build(1, filterPredicates(req.IsActive)...)
	where, args = searchClause(where, args, req.Search)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + where +
		` ORDER BY ` + sortOrder(opts.SortBy, opts.SortDir) +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, shared.AsStoreUnavailable(rows.Err())
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND NOT is_deleted`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, shared.AsStoreUnavailable(err)
	}
	return p, nil
}

func (r *repository) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	where, args := dbquery.Build(1, filterPredicates(req.IsActive)...)
	where, args = searchClause(where, args, req.Search)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+where, args...).Scan(&total); err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return total, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET handle = $1, title = $2, meta_title = $3, description = $4,
		   meta_description = $5, body = $6, has_only_default_variant = $7, options = $8,
		   metafields = $9, is_active = $10, updated_at = now(), updated_by = $11
		 WHERE id = $12 AND NOT is_deleted`,
		product.Handle, product.Title, product.MetaTitle, product.Description,
		product.MetaDescription, product.Body, product.HasOnlyDefaultVariant, product.Options,
		product.Metafields, product.IsActive, product.UpdatedBy, product.ID)
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
		`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE `+where,
		append(args, whereArgs...)...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, shared.ErrDuplicate
		}
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
	if in.Handle != nil {
		add("handle", *in.Handle)
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
	if in.HasOnlyDefaultVariant != nil {
		add("has_only_default_variant", *in.HasOnlyDefaultVariant)
	}
	if in.Options != nil {
		add("options", in.Options)
	}
	if in.Metafields != nil {
		add("metafields", in.Metafields)
	}
	if in.IsActive != nil {
		add("is_active", *in.IsActive)
	}
	return sets, args
}

func (r *repository) SoftDelete(ctx context.Context, id string, by int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_deleted = true, updated_at = now(), updated_by = $1
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
		`UPDATE products SET is_deleted = true, updated_at = now(), updated_by = $1 WHERE `+where,
		append([]any{by}, args...)...)
	if err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE `+where, args...)
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
	case "title":
		return "title " + dir
	case "created_at", "createdAt":
		return "created_at " + dir
	default:
		return "created_at " + dir
	}
}
