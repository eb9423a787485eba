package proxy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finledger/internal/cache"
	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/repository"
)

type CategoryProxy struct {
	repo  repository.CategoryRepository
	cache *cache.IdentityMap[uuid.UUID, core.Category]
}

func NewCategoryProxy(ctx context.Context, repo repository.CategoryRepository) (*CategoryProxy, error) {
	categories, err := repo.GetAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	p := &CategoryProxy{repo: repo, cache: cache.NewIdentityMap[uuid.UUID, core.Category]()}
	for _, c := range categories {
		p.cache.Set(c.ID, c)
	}
	debug(ctx, "Categories cached", log.FieldCount, len(categories))
	return p, nil
}

func (p *CategoryProxy) GetAllCategories(_ context.Context) ([]core.Category, error) {
	return p.cache.Values(), nil
}

func (p *CategoryProxy) CreateCategory(ctx context.Context, t core.ItemType, name string) (core.Category, error) {
	category, err := p.repo.CreateCategory(ctx, t, name)
	if err != nil {
		return core.Category{}, err
	}
	p.cache.Set(category.ID, category)
	return category, nil
}

func (p *CategoryProxy) GetCategory(ctx context.Context, id uuid.UUID) (*core.Category, error) {
	if c, ok := p.cache.Get(id); ok {
		return &c, nil
	}

	c, err := p.repo.GetCategory(ctx, id)
	if err != nil || c == nil {
		return c, err
	}
	p.cache.Set(c.ID, *c)
	debug(ctx, "Category cache filled", log.FieldCategoryID, id)
	return c, nil
}

func (p *CategoryProxy) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := p.repo.DeleteCategory(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	p.cache.Delete(id)
	return true, nil
}

func (p *CategoryProxy) UpdateCategory(ctx context.Context, category core.Category) error {
	if err := p.repo.UpdateCategory(ctx, category); err != nil {
		return err
	}
	p.cache.Set(category.ID, category)
	return nil
}

func (p *CategoryProxy) UploadCategory(ctx context.Context, category core.Category) error {
	if p.cache.Has(category.ID) {
		return alreadyCached("category", category.ID)
	}
	if err := p.repo.UploadCategory(ctx, category); err != nil {
		return err
	}
	p.cache.Set(category.ID, category)
	return nil
}

func (p *CategoryProxy) Accept(_ context.Context, v core.Visitor) error {
	for _, c := range p.cache.Values() {
		c.Accept(v)
	}
	return nil
}
