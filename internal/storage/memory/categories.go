package memory

import (
	"context"

	"github.com/google/uuid"

	"finledger/internal/core"
)

type CategoryStore struct {
	s *Store
}

func NewCategoryStore(s *Store) *CategoryStore {
	return &CategoryStore{s: s}
}

func (c *CategoryStore) GetAllCategories(_ context.Context) ([]core.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.categories.Values(), nil
}

func (c *CategoryStore) CreateCategory(_ context.Context, t core.ItemType, name string) (core.Category, error) {
	category, err := core.NewCategory(t, name)
	if err != nil {
		return core.Category{}, err
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.categories.Set(category.ID, category)
	return category, nil
}

func (c *CategoryStore) GetCategory(_ context.Context, id uuid.UUID) (*core.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	category, ok := c.s.categories.Get(id)
	if !ok {
		return nil, nil
	}
	return &category, nil
}

func (c *CategoryStore) DeleteCategory(_ context.Context, id uuid.UUID) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if !c.s.categories.Has(id) {
		return false, nil
	}
	c.s.categories.Delete(id)
	return true, nil
}

func (c *CategoryStore) UpdateCategory(_ context.Context, category core.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if !c.s.categories.Has(category.ID) {
		return notFound("category", category.ID)
	}
	c.s.categories.Set(category.ID, category)
	return nil
}

func (c *CategoryStore) UploadCategory(_ context.Context, category core.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.categories.Has(category.ID) {
		return alreadyExists("category", category.ID)
	}
	c.s.categories.Set(category.ID, category)
	return nil
}

func (c *CategoryStore) Accept(ctx context.Context, v core.Visitor) error {
	categories, err := c.GetAllCategories(ctx)
	if err != nil {
		return err
	}
	for _, category := range categories {
		category.Accept(v)
	}
	return nil
}
