package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finledger/internal/core"
)

type CategoryStore struct {
	db *DB
}

func NewCategoryStore(db *DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) GetAllCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]core.Category, 0, len(rows))
	for _, r := range rows {
		c, err := r.toCore()
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func (s *CategoryStore) CreateCategory(ctx context.Context, t core.ItemType, name string) (core.Category, error) {
	category, err := core.NewCategory(t, name)
	if err != nil {
		return core.Category{}, err
	}

	if err := s.db.queries.InsertCategory(ctx, categoryRow(category)); err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"component", "storage",
		"id", category.ID,
		"type", category.Type,
		"name", category.Name)

	return category, nil
}

func (s *CategoryStore) GetCategory(ctx context.Context, id uuid.UUID) (*core.Category, error) {
	row, err := s.db.queries.GetCategory(ctx, id.String())
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	category, err := row.toCore()
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryStore) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.db.queries.DeleteCategory(ctx, id.String())
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	slog.InfoContext(ctx, "Category deleted", "component", "storage", "id", id)
	return true, nil
}

func (s *CategoryStore) UpdateCategory(ctx context.Context, category core.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}

	n, err := s.db.queries.UpdateCategory(ctx, categoryRow(category))
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return notFound("category", category.ID)
	}

	slog.InfoContext(ctx, "Category updated",
		"component", "storage",
		"id", category.ID,
		"type", category.Type,
		"name", category.Name)
	return nil
}

func (s *CategoryStore) UploadCategory(ctx context.Context, category core.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}

	return s.db.withTx(ctx, func(q *Queries) error {
		_, err := q.GetCategory(ctx, category.ID.String())
		if err == nil {
			return alreadyExists("category", category.ID)
		}
		if !isNoRows(err) {
			return fmt.Errorf("check category: %w", err)
		}

		if err := q.InsertCategory(ctx, categoryRow(category)); err != nil {
			return txErr("insert category", err)
		}
		return nil
	})
}

func (s *CategoryStore) Accept(ctx context.Context, v core.Visitor) error {
	categories, err := s.GetAllCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		c.Accept(v)
	}
	return nil
}
