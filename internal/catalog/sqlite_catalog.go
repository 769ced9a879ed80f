package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

type SQLiteCatalog struct {
	db *sql.DB
}

func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

func (c *SQLiteCatalog) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(c.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (c *SQLiteCatalog) Resolve(ctx context.Context, itemID string) (*domain.CatalogItem, error) {
	query := `
		SELECT i.id, i.category_id, i.name, i.description, i.base_price, i.is_active, c.is_active
		FROM menu_items i
		LEFT JOIN categories c ON c.id = i.category_id
		WHERE i.id = ?
	`

	item := &domain.CatalogItem{}
	var categoryActive sql.NullBool
	err := c.db.QueryRowContext(ctx, query, itemID).Scan(
		&item.ID,
		&item.CategoryID,
		&item.Name,
		&item.Description,
		&item.BasePrice,
		&item.IsActive,
		&categoryActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %q: %w", itemID, ErrItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}
	if !categoryActive.Valid || !categoryActive.Bool {
		return nil, fmt.Errorf("category %q: %w", item.CategoryID, ErrCategoryNotFound)
	}

	groups, err := c.loadModifierGroups(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	item.ModifierGroups = groups
	return item, nil
}

func (c *SQLiteCatalog) ListItems(ctx context.Context) ([]*domain.CatalogItem, error) {
	query := `
		SELECT i.id, i.category_id, i.name, i.description, i.base_price, i.is_active
		FROM menu_items i
		JOIN categories c ON c.id = i.category_id
		WHERE i.is_active = 1 AND c.is_active = 1
		ORDER BY c.sort_order, i.sort_order, i.id
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}

	var items []*domain.CatalogItem
	for rows.Next() {
		item := &domain.CatalogItem{}
		err := rows.Scan(
			&item.ID,
			&item.CategoryID,
			&item.Name,
			&item.Description,
			&item.BasePrice,
			&item.IsActive,
		)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	// the pool holds a single connection, release it before the next query
	rows.Close()

	for _, item := range items {
		groups, err := c.loadModifierGroups(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		item.ModifierGroups = groups
	}
	return items, nil
}

func (c *SQLiteCatalog) loadModifierGroups(ctx context.Context, itemID string) ([]domain.ModifierGroup, error) {
	groupQuery := `
		SELECT id, name, is_required, min_select, max_select
		FROM modifier_groups
		WHERE item_id = ?
		ORDER BY sort_order, id
	`

	rows, err := c.db.QueryContext(ctx, groupQuery, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modifier groups: %w", err)
	}

	groups := []domain.ModifierGroup{}
	index := make(map[string]int)
	for rows.Next() {
		var g domain.ModifierGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.IsRequired, &g.MinSelect, &g.MaxSelect); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan modifier group: %w", err)
		}
		g.Options = []domain.ModifierOption{}
		index[g.ID] = len(groups)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	if len(groups) == 0 {
		return groups, nil
	}

	optionQuery := `
		SELECT o.group_id, o.id, o.name, o.price_delta, o.is_active
		FROM modifier_options o
		JOIN modifier_groups g ON g.id = o.group_id
		WHERE g.item_id = ?
		ORDER BY o.sort_order, o.id
	`

	rows, err = c.db.QueryContext(ctx, optionQuery, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modifier options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID string
		var o domain.ModifierOption
		if err := rows.Scan(&groupID, &o.ID, &o.Name, &o.PriceDelta, &o.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan modifier option: %w", err)
		}
		if gi, ok := index[groupID]; ok {
			groups[gi].Options = append(groups[gi].Options, o)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return groups, nil
}

func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
