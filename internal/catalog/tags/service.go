package tags

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	catalog "github.com/vinyldesk/vinyldesk/internal/catalog/shared"
	"github.com/vinyldesk/vinyldesk/internal/platform/httpx"
)

// Service applies validation and defaulting over the repository.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
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

// Create inserts a new tag with default flags stamped.
func (s *Service) Create(ctx context.Context, in Input, by int64) (Tag, error) {
	in, err := s.prepare(in, true)
	if err != nil {
		return Tag{}, err
	}
	tag := Tag{IsActive: true, AddedBy: &by, UpdatedBy: &by}
	in.apply(&tag)
	return s.repo.Create(ctx, tag)
}

// CreateBulk inserts a batch of tags.
func (s *Service) CreateBulk(ctx context.Context, ins []Input, by int64) (int64, error) {
	tags := make([]Tag, 0, len(ins))
	for _, in := range ins {
		in, err := s.prepare(in, true)
		if err != nil {
			return 0, err
		}
		tag := Tag{IsActive: true, AddedBy: &by, UpdatedBy: &by}
		in.apply(&tag)
		tags = append(tags, tag)
	}
	return s.repo.CreateBulk(ctx, tags)
}

// List returns one page of non-deleted tags.
func (s *Service) List(ctx context.Context, req catalog.ListRequest) ([]Tag, catalog.Paginator, error) {
	req.Options = req.Options.Normalize()
	tags, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, catalog.Paginator{}, err
	}
	return tags, catalog.NewPaginator(req.Options, total), nil
}

// Get fetches one tag by id.
func (s *Service) Get(ctx context.Context, id int64) (Tag, error) {
	return s.repo.Get(ctx, id)
}

// Count returns the number of tags matching the filters.
func (s *Service) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	return s.repo.Count(ctx, req)
}

// Update merges the provided fields into the stored record.
func (s *Service) Update(ctx context.Context, id int64, in Input, by int64) (Tag, error) {
	in, err := s.prepare(in, false)
	if err != nil {
		return Tag{}, err
	}
	tag, err := s.repo.Get(ctx, id)
	if err != nil {
		return Tag{}, err
	}
	in.apply(&tag)
	tag.UpdatedBy = &by
	if err := s.repo.Update(ctx, tag); err != nil {
		return Tag{}, err
	}
	return tag, nil
}

// UpdateBulk applies the provided fields to every listed tag.
func (s *Service) UpdateBulk(ctx context.Context, ids []int64, in Input, by int64) (int64, error) {
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
func (s *Service) SoftDelete(ctx context.Context, id, by int64) error {
	return s.repo.SoftDelete(ctx, id, by)
}

// SoftDeleteMany flags a batch of records deleted.
func (s *Service) SoftDeleteMany(ctx context.Context, ids []int64, by int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.SoftDeleteMany(ctx, ids, by)
}

// Delete removes a record permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// DeleteMany removes a batch of records permanently.
func (s *Service) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.DeleteMany(ctx, ids)
}
