package users

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

// Repository persists account records. It shares the users table with the
// auth module but exposes the management surface.
type Repository interface {
	Create(ctx context.Context, account Account) (Account, error)
	List(ctx context.Context, req catalog.ListRequest) ([]Account, int, error)
	Get(ctx context.Context, id int64) (Account, error)
	Count(ctx context.Context, req catalog.CountRequest) (int, error)
	Update(ctx context.Context, account Account) error
	UpdateBulk(ctx context.Context, ids []int64, in Input, passwordHash string) (int64, error)
	SoftDelete(ctx context.Context, id int64) error
	SoftDeleteMany(ctx context.Context, ids []int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

const accountColumns = `id, username, email, password_hash, user_type, is_active, is_deleted,
	login_retry_count, locked_until, created_at, updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.UserType,
		&a.IsActive, &a.IsDeleted, &a.LoginRetryCount, &a.LockedUntil,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) Create(ctx context.Context, account Account) (Account, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, user_type, is_active, is_deleted,
		   login_retry_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, now(), now())
		 RETURNING id, created_at, updated_at`,
		account.Username, account.Email, account.PasswordHash, account.UserType,
		account.IsActive, account.IsDeleted).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Account{}, shared.ErrDuplicate
		}
		return Account{}, shared.AsStoreUnavailable(err)
	}
	return account, nil
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
	where += ` AND (username ILIKE $` + n + ` OR email ILIKE $` + n + `)`
	return where, append(args, "%"+search+"%")
}

func (r *repository) List(ctx context.Context, req catalog.ListRequest) ([]Account, int, error) {
	opts := req.Options.Normalize()
	where, args := dbquery.Build(1, filterPredicates(req.IsActive)...)
	where, args = searchClause(where, args, req.Search)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}

	query := `SELECT ` + accountColumns + ` FROM users WHERE ` + where +
		` ORDER BY ` + sortOrder(opts.SortBy, opts.SortDir) +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.AsStoreUnavailable(err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, shared.AsStoreUnavailable(rows.Err())
}

func (r *repository) Get(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE id = $1 AND NOT is_deleted`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, shared.AsStoreUnavailable(err)
	}
	return a, nil
}

func (r *repository) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	where, args := dbquery.Build(1, filterPredicates(req.IsActive)...)
	where, args = searchClause(where, args, req.Search)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return total, nil
}

func (r *repository) Update(ctx context.Context, account Account) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET username = $1, email = $2, password_hash = $3, user_type = $4,
		   is_active = $5, updated_at = now()
		 WHERE id = $6 AND NOT is_deleted`,
		account.Username, account.Email, account.PasswordHash, account.UserType,
		account.IsActive, account.ID)
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

func (r *repository) UpdateBulk(ctx context.Context, ids []int64, in Input, passwordHash string) (int64, error) {
	sets, args := patchClauses(in, passwordHash)
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
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE `+where,
		append(args, whereArgs...)...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, shared.ErrDuplicate
		}
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
}

func patchClauses(in Input, passwordHash string) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if in.Username != nil {
		add("username", *in.Username)
	}
	if in.Email != nil {
		add("email", *in.Email)
	}
	if passwordHash != "" {
		add("password_hash", passwordHash)
	}
	if in.UserType != nil {
		add("user_type", *in.UserType)
	}
	if in.IsActive != nil {
		add("is_active", *in.IsActive)
	}
	return sets, args
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_deleted = true, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return shared.AsStoreUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDeleteMany(ctx context.Context, ids []int64) (int64, error) {
	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}
	where, args := dbquery.Build(1, dbquery.In("id", idArgs...), dbquery.Eq("is_deleted", false))
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_deleted = true, updated_at = now() WHERE `+where, args...)
	if err != nil {
		return 0, shared.AsStoreUnavailable(err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE `+where, args...)
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
	case "username":
		return "username " + dir
	case "email":
		return "email " + dir
	case "created_at", "createdAt":
		return "created_at " + dir
	default:
		return "created_at " + dir
	}
}
