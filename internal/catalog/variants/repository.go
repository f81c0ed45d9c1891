package variants

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

// ListRequest extends the common list filters with a product scope.
type ListRequest struct {
	catalog.ListRequest
	ProductID *string `json:"product"`
}

// Repository persists variants.
type Repository interface {
	Create(ctx context.Context, variant Variant) (Variant, error)
	CreateBulk(ctx context.Context, variants []Variant) (int64, error)
	List(ctx context.Context, req ListRequest) ([]Variant, int, error)
	Get(ctx context.Context, id string) (Variant, error)
	Count(ctx context.Context, req catalog.CountRequest) (int, error)
	Update(ctx context.Context, variant Variant) error
	UpdateBulk(ctx context.Context, ids []string, in Input) (int64, error)
	SoftDelete(ctx context.Context, id string) error
	SoftDeleteMany(ctx context.Context, ids []string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

const variantColumns = `id, sku, title, quantity, price, product_id,
	is_active, is_deleted, created_at, updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanVariant(row pgx.Row) (Variant, error) {
	var v Variant
	err := row.Scan(&v.ID, &v.SKU, &v.Title, &v.Quantity, &v.Price, &v.ProductID,
		&v.IsActive, &v.IsDeleted, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *repository) Create(ctx context.Context, variant Variant) (Variant, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO variants (id, sku, title, quantity, price, product_id,
		   is_active, is_deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		 RETURNING created_at, updated_at`,
		variant.ID, variant.SKU, variant.Title, variant.Quantity, variant.Price,
		variant.ProductID, variant.IsActive, variant.IsDeleted).
		Scan(&variant.CreatedAt, &variant.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Variant{}, shared.ErrDuplicate
		}
		return Variant{}, shared.AsStoreUnavailable(err)
	}
	return variant, nil
}

func (r *repository) CreateBulk(ctx context.Context, variants []Variant) (int64, error) {
	batch := &pgx.Batch{}
	for _, variant := range variants {
		batch.Queue(
			`INSERT INTO variants (id, sku, title, quantity, price, product_id,
			   is_active, is_deleted, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
			variant.ID, variant.SKU, variant.Title, variant.Quantity, variant.Price,
			variant.ProductID, variant.IsActive, variant.IsDeleted)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range variants {
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

func (r *repository) List(ctx context.Context, req ListRequest) ([]Variant, int, error) {
	opts := req.Options.Normalize()
	preds := []dbquery.Predicate{dbquery.Eq("is_deleted", false)}
	if req.IsActive != nil {
		preds = append(preds, dbquery.Eq("is_active", *req.IsActive))
	}
	if req.ProductID != nil {
		preds = append(preds, dbquery.Eq("product_id", *req.ProductID))
	}
	where, args := dbquery.Build(1, preds...)
	if req.Search != "" {
		n := strconv.Itoa(len(args) + 1)
		where += ` AND (title ILIKE $` + n + ` OR sku ILIKE $` + n + `)`
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM variants WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}

	query := `SELECT ` + variantColumns + ` FROM variants WHERE ` + where +
		` ORDER BY ` + sortOrder(opts.SortBy, opts.SortDir) +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}
	defer rows.Close()

	var variants []Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, 0, err
		}
		variants = append(variants, v)
	}
	return variants, total, shared.AsStoreUnavailable(rows.Err())
}

func (r *repository) Get(ctx context.Context, id string) (Variant, error) {
	v, err := scanVariant(r.pool.QueryRow(ctx,
		`SELECT `+variantColumns+` FROM variants WHERE id = $1 AND NOT is_deleted`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, shared.ErrNotFound
		}
		return Variant{}, shared.AsStoreUnavailable(err)
	}
	return v, nil
}

func (r *repository) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	preds := []dbquery.Predicate{dbquery.Eq("is_deleted", false)}
	if req.IsActive != nil {
		preds = append(preds, dbquery.Eq("is_active", *req.IsActive))
	}
	where, args := dbquery.Build(1, preds...)
	if req.Search != "" {
		n := strconv.Itoa(len(args) + 1)
		where += ` AND (title ILIKE $` + n + ` OR sku ILIKE $` + n + `)`
		args = append(args, "%"+req.Search+"%")
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM variants WHERE `+where, args...).Scan(&total); err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return total, nil
}

func (r *repository) Update(ctx context.Context, variant Variant) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE variants SET sku = $1, title = $2, quantity = $3, price = $4,
		   product_id = $5, is_active = $6, updated_at = now()
		 WHERE id = $7 AND NOT is_deleted`,
		variant.SKU, variant.Title, variant.Quantity, variant.Price,
		variant.ProductID, variant.IsActive, variant.ID)
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

func (r *repository) UpdateBulk(ctx context.Context, ids []string, in Input) (int64, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if in.SKU != nil {
		add("sku", *in.SKU)
	}
	if in.Title != nil {
		add("title", *in.Title)
	}
	if in.Quantity != nil {
		add("quantity", *in.Quantity)
	}
	if in.Price != nil {
		add("price", *in.Price)
	}
	if in.ProductID != nil {
		add("product_id", *in.ProductID)
	}
	if in.IsActive != nil {
		add("is_active", *in.IsActive)
	}
	if len(sets) == 0 {
		return 0, nil
	}
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
		`UPDATE variants SET `+strings.Join(sets, ", ")+` WHERE `+where,
		append(args, whereArgs...)...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, shared.ErrDuplicate
		}
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE variants SET is_deleted = true, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return shared.AsStoreUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDeleteMany(ctx context.Context, ids []string) (int64, error) {
	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}
	where, args := dbquery.Build(1, dbquery.In("id", idArgs...), dbquery.Eq("is_deleted", false))
	tag, err := r.pool.Exec(ctx,
		`UPDATE variants SET is_deleted = true, updated_at = now() WHERE `+where, args...)
	if err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM variants WHERE id = $1`, id)
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM variants WHERE `+where, args...)
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
	case "title":
		return "title " + dir
	case "price":
		return "price " + dir
	case "quantity":
		return "quantity " + dir
	case "created_at", "createdAt":
		return "created_at " + dir
	default:
		return "created_at " + dir
	}
}
