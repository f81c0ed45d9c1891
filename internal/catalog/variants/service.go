package variants

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	catalog "github.com/vinyldesk/vinyldesk/internal/catalog/shared"
	"github.com/vinyldesk/vinyldesk/internal/platform/httpx"
)

// Service applies validation, id assignment and defaulting over the
// repository.
type Service struct {
	repo     Repository
	validate *validator.Validate
	newID    func() string
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New(), newID: uuid.NewString}
}

func (s *Service) prepare(in Input, forCreate bool) (Input, error) {
	if err := s.validate.Struct(in); err != nil {
		return in, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if forCreate && (in.ProductID == nil || *in.ProductID == "") {
		return in, fmt.Errorf("%w: product is required", httpx.ErrValidation)
	}
	return in, nil
}

// Create inserts a new variant with a generated UUID and default flags.
func (s *Service) Create(ctx context.Context, in Input) (Variant, error) {
	in, err := s.prepare(in, true)
	if err != nil {
		return Variant{}, err
	}
	variant := Variant{ID: s.newID(), IsActive: true}
	in.apply(&variant)
	return s.repo.Create(ctx, variant)
}

// CreateBulk inserts a batch of variants.
func (s *Service) CreateBulk(ctx context.Context, ins []Input) (int64, error) {
	variants := make([]Variant, 0, len(ins))
	for _, in := range ins {
		in, err := s.prepare(in, true)
		if err != nil {
			return 0, err
		}
		variant := Variant{ID: s.newID(), IsActive: true}
		in.apply(&variant)
		variants = append(variants, variant)
	}
	return s.repo.CreateBulk(ctx, variants)
}

// List returns one page of non-deleted variants.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Variant, catalog.Paginator, error) {
	req.Options = req.Options.Normalize()
	variants, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, catalog.Paginator{}, err
	}
	return variants, catalog.NewPaginator(req.Options, total), nil
}

// Get fetches one variant by id.
func (s *Service) Get(ctx context.Context, id string) (Variant, error) {
	return s.repo.Get(ctx, id)
}

// Count returns the number of variants matching the filters.
func (s *Service) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	return s.repo.Count(ctx, req)
}

// Update merges the provided fields into the stored record.
func (s *Service) Update(ctx context.Context, id string, in Input) (Variant, error) {
	in, err := s.prepare(in, false)
	if err != nil {
		return Variant{}, err
	}
	variant, err := s.repo.Get(ctx, id)
	if err != nil {
		return Variant{}, err
	}
	in.apply(&variant)
	if err := s.repo.Update(ctx, variant); err != nil {
		return Variant{}, err
	}
	return variant, nil
}

// UpdateBulk applies the provided fields to every listed variant.
func (s *Service) UpdateBulk(ctx context.Context, ids []string, in Input) (int64, error) {
	in, err := s.prepare(in, false)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.UpdateBulk(ctx, ids, in)
}

// SoftDelete flags a record deleted without removing the row.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

// SoftDeleteMany flags a batch of records deleted.
func (s *Service) SoftDeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.SoftDeleteMany(ctx, ids)
}

// Delete removes a record permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeleteMany removes a batch of records permanently.
func (s *Service) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.DeleteMany(ctx, ids)
}
