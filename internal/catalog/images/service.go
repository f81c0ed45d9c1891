package images

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
	if forCreate && (in.Src == nil || *in.Src == "") {
		return in, fmt.Errorf("%w: src is required", httpx.ErrValidation)
	}
	return in, nil
}

// Create inserts a new image with a generated UUID and default flags.
func (s *Service) Create(ctx context.Context, in Input, by int64) (Image, error) {
	in, err := s.prepare(in, true)
	if err != nil {
		return Image{}, err
	}
	image := Image{ID: s.newID(), IsActive: true, AddedBy: &by, UpdatedBy: &by}
	in.apply(&image)
	return s.repo.Create(ctx, image)
}

// CreateBulk inserts a batch of images.
func (s *Service) CreateBulk(ctx context.Context, ins []Input, by int64) (int64, error) {
	images := make([]Image, 0, len(ins))
	for _, in := range ins {
		in, err := s.prepare(in, true)
		if err != nil {
			return 0, err
		}
		image := Image{ID: s.newID(), IsActive: true, AddedBy: &by, UpdatedBy: &by}
		in.apply(&image)
		images = append(images, image)
	}
	return s.repo.CreateBulk(ctx, images)
}

// List returns one page of non-deleted images.
func (s *Service) List(ctx context.Context, req catalog.ListRequest) ([]Image, catalog.Paginator, error) {
	req.Options = req.Options.Normalize()
	images, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, catalog.Paginator{}, err
	}
	return images, catalog.NewPaginator(req.Options, total), nil
}

// Get fetches one image by id.
func (s *Service) Get(ctx context.Context, id string) (Image, error) {
	return s.repo.Get(ctx, id)
}

// Count returns the number of images matching the filters.
func (s *Service) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	return s.repo.Count(ctx, req)
}

// Update merges the provided fields into the stored record.
func (s *Service) Update(ctx context.Context, id string, in Input, by int64) (Image, error) {
	in, err := s.prepare(in, false)
	if err != nil {
		return Image{}, err
	}
	image, err := s.repo.Get(ctx, id)
	if err != nil {
		return Image{}, err
	}
	in.apply(&image)
	image.UpdatedBy = &by
	if err := s.repo.Update(ctx, image); err != nil {
		return Image{}, err
	}
	return image, nil
}

// UpdateBulk applies the provided fields to every listed image.
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
