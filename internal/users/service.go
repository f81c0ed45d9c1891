package users

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/vinyldesk/vinyldesk/internal/auth"
	catalog "github.com/vinyldesk/vinyldesk/internal/catalog/shared"
	"github.com/vinyldesk/vinyldesk/internal/platform/httpx"
)

// Service manages accounts on behalf of the admin platform. Passwords are
// hashed here so the repository only ever sees digests.
type Service struct {
	repo     Repository
	verifier auth.CredentialVerifier
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository, verifier auth.CredentialVerifier) *Service {
	return &Service{repo: repo, verifier: verifier, validate: validator.New()}
}

func (s *Service) prepare(in Input, forCreate bool) (Input, string, error) {
	if err := s.validate.Struct(in); err != nil {
		return in, "", fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if forCreate {
		if in.Username == nil || *in.Username == "" {
			return in, "", fmt.Errorf("%w: username is required", httpx.ErrValidation)
		}
		if in.Email == nil || *in.Email == "" {
			return in, "", fmt.Errorf("%w: email is required", httpx.ErrValidation)
		}
		if in.Password == nil || *in.Password == "" {
			return in, "", fmt.Errorf("%w: password is required", httpx.ErrValidation)
		}
	}
	var hash string
	if in.Password != nil && *in.Password != "" {
		h, err := s.verifier.Hash(*in.Password)
		if err != nil {
			return in, "", err
		}
		hash = h
	}
	return in, hash, nil
}

// Create inserts a new account. The account type defaults to a desktop user.
func (s *Service) Create(ctx context.Context, in Input) (Account, error) {
	in, hash, err := s.prepare(in, true)
	if err != nil {
		return Account{}, err
	}
	account := Account{UserType: auth.UserTypeUser, IsActive: true}
	in.apply(&account, hash)
	return s.repo.Create(ctx, account)
}

// List returns one page of non-deleted accounts.
func (s *Service) List(ctx context.Context, req catalog.ListRequest) ([]Account, catalog.Paginator, error) {
	req.Options = req.Options.Normalize()
	accounts, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, catalog.Paginator{}, err
	}
	return accounts, catalog.NewPaginator(req.Options, total), nil
}

// Get fetches one account by id.
func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.Get(ctx, id)
}

// Count returns the number of accounts matching the filters.
func (s *Service) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	return s.repo.Count(ctx, req)
}

// Update merges the provided fields into the stored record, rehashing the
// password when one is supplied.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Account, error) {
	in, hash, err := s.prepare(in, false)
	if err != nil {
		return Account{}, err
	}
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	in.apply(&account, hash)
	if err := s.repo.Update(ctx, account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// UpdateBulk applies the provided fields to every listed account.
func (s *Service) UpdateBulk(ctx context.Context, ids []int64, in Input) (int64, error) {
	in, hash, err := s.prepare(in, false)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.UpdateBulk(ctx, ids, in, hash)
}

// SoftDelete flags an account deleted. Tokens already issued for it stop
// working on the next authorization check.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// SoftDeleteMany flags a batch of accounts deleted.
func (s *Service) SoftDeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.SoftDeleteMany(ctx, ids)
}

// Delete removes an account permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// DeleteMany removes a batch of accounts permanently.
func (s *Service) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.DeleteMany(ctx, ids)
}
