package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"blogsite-backend/internal/model"
	"blogsite-backend/internal/repository"
)

// TaxonomyService manages the flat tag and category vocabularies.
type TaxonomyService struct {
	tagRepo      repository.TagRepository
	categoryRepo repository.CategoryRepository
}

func NewTaxonomyService(tagRepo repository.TagRepository, categoryRepo repository.CategoryRepository) *TaxonomyService {
	return &TaxonomyService{
		tagRepo:      tagRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *TaxonomyService) CreateTag(ctx context.Context, req model.CreateTaxonomyRequest) (*model.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrNameRequired
	}
	tag := &model.Tag{
		Name: name,
		Slug: Slugify(name),
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TaxonomyService) GetTag(ctx context.Context, slug string) (*model.Tag, error) {
	return s.tagRepo.GetBySlug(ctx, slug)
}

func (s *TaxonomyService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tagRepo.List(ctx)
}

func (s *TaxonomyService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return s.tagRepo.Delete(ctx, id)
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, req model.CreateTaxonomyRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrNameRequired
	}
	category := &model.Category{
		Name: name,
		Slug: Slugify(name),
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *TaxonomyService) GetCategory(ctx context.Context, slug string) (*model.Category, error) {
	return s.categoryRepo.GetBySlug(ctx, slug)
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *TaxonomyService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}
