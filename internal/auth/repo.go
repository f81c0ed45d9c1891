package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinyldesk/vinyldesk/internal/platform/db"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByLogin(ctx context.Context, login string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user *User) (int64, error)
	// RecordFailedAttempt atomically increments the failed-login counter and,
	// when the counter reaches limit, stamps lockUntil. The single UPDATE
	// serializes concurrent attempts on the row lock so the threshold cannot
	// be bypassed by racing logins.
	RecordFailedAttempt(ctx context.Context, id int64, limit int, lockUntil time.Time) (int, *time.Time, error)
	// ResetLoginState clears the counter and any lockout stamp.
	ResetLoginState(ctx context.Context, id int64) error
}

const userColumns = `id, username, email, password_hash, user_type, is_active, is_deleted, login_retry_count, locked_until, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.UserType,
		&u.IsActive, &u.IsDeleted, &u.LoginRetryCount, &u.LockedUntil,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.AsStoreUnavailable(err)
	}
	return &u, nil
}

// FindByLogin fetches a user by username or email. Deleted and inactive rows
// are returned as well; the service decides what they mean.
func (r *PGRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1 LIMIT 1`, login)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts a new user and returns its id.
func (r *PGRepository) Create(ctx context.Context, user *User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, user_type, is_active, is_deleted, login_retry_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, now(), now())
		 RETURNING id`,
		user.Username, user.Email, user.PasswordHash, user.UserType, user.IsActive, user.IsDeleted).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, shared.ErrDuplicate
		}
		return 0, shared.AsStoreUnavailable(err)
	}
	return id, nil
}

// RecordFailedAttempt bumps the counter and stamps the lockout in one
// statement.
func (r *PGRepository) RecordFailedAttempt(ctx context.Context, id int64, limit int, lockUntil time.Time) (int, *time.Time, error) {
	var count int
	var lockedUntil *time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET login_retry_count = login_retry_count + 1,
		     locked_until = CASE WHEN login_retry_count + 1 >= $2 THEN $3 ELSE locked_until END,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING login_retry_count, locked_until`,
		id, limit, lockUntil).Scan(&count, &lockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, shared.ErrNotFound
		}
		return 0, nil, shared.AsStoreUnavailable(err)
	}
	return count, lockedUntil, nil
}

// ResetLoginState clears lockout state after a successful login or an
// expired lockout window.
func (r *PGRepository) ResetLoginState(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET login_retry_count = 0, locked_until = NULL, updated_at = now() WHERE id = $1`, id)
	return shared.AsStoreUnavailable(err)
}

var _ Repository = (*PGRepository)(nil)
