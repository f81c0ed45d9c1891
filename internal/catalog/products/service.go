package products

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
	if forCreate && (in.Handle == nil || *in.Handle == "") {
		return in, fmt.Errorf("%w: handle is required", httpx.ErrValidation)
	}
	if in.Handle != nil {
		slug := catalog.Slugify(*in.Handle)
		in.Handle = &slug
	}
	return in, nil
}

// Create inserts a new product with a generated UUID and default flags.
func (s *Service) Create(ctx context.Context, in Input, by int64) (Product, error) {
	in, err := s.prepare(in, true)
	if err != nil {
		return Product{}, err
	}
	product := Product{ID: s.newID(), IsActive: true, AddedBy: &by, UpdatedBy: &by}
	in.apply(&product)
	return s.repo.Create(ctx, product)
}

// CreateBulk inserts a batch of products.
func (s *Service) CreateBulk(ctx context.Context, ins []Input, by int64) (int64, error) {
	products := make([]Product, 0, len(ins))
	for _, in := range ins {
		in, err := s.prepare(in, true)
		if err != nil {
			return 0, err
		}
		product := Product{ID: s.newID(), IsActive: true, AddedBy: &by, UpdatedBy: &by}
		in.apply(&product)
		products = append(products, product)
	}
	return s.repo.CreateBulk(ctx, products)
}

// List returns one page of non-deleted products.
func (s *Service) List(ctx context.Context, req catalog.ListRequest) ([]Product, catalog.Paginator, error) {
	req.Options = req.Options.Normalize()
	products, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, catalog.Paginator{}, err
	}
	return products, catalog.NewPaginator(req.Options, total), nil
}

// Get fetches one product by id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.Get(ctx, id)
}

// Count returns the number of products matching the filters.
func (s *Service) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	return s.repo.Count(ctx, req)
}

// Update merges the provided fields into the stored record.
func (s *Service) Update(ctx context.Context, id string, in Input, by int64) (Product, error) {
	in, err := s.prepare(in, false)
	if err != nil {
		return Product{}, err
	}
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	in.apply(&product)
	product.UpdatedBy = &by
	if err := s.repo.Update(ctx, product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// UpdateBulk applies the provided fields to every listed product.
func (s *Service) UpdateBulk(ctx context.Context, ids []string, in Input, by int64) (int64, error) {
	in, err := s.prepare(in, false)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.UpdateBulk(ctx, ids, in, by)
}

// SoftDelete flags a record deleted without removing the row.
func (s *Service) SoftDelete(ctx context.Context, id string, by int64) error {
	return s.repo.SoftDelete(ctx, id, by)
}

// SoftDeleteMany flags a batch of records deleted.
func (s *Service) SoftDeleteMany(ctx context.Context, ids []string, by int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.SoftDeleteMany(ctx, ids, by)
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
