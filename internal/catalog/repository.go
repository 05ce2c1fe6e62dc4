package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"comanda/internal/domain"
)

// Repository serves the read-only lookups that populate the cart UI:
// active menu items, their categories, and the floor's tables.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	query := `
		SELECT id, categoryId, name, price, isActive, createdAt, updatedAt
		FROM MenuItems
		WHERE isActive = 1
		ORDER BY categoryId, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Price,
			&item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning menu item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *Repository) ListMenuCategories(ctx context.Context) ([]domain.MenuCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM MenuCategories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying menu categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.MenuCategory
	for rows.Next() {
		var c domain.MenuCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning menu category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *Repository) ListTables(ctx context.Context) ([]domain.Table, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, number, seats FROM Tables ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var tables []domain.Table
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Seats); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}
