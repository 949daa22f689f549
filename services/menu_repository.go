package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"menu-service/models"
)

// CatalogRepository persists whole catalogs. LoadCatalog reports stored=false
// when no catalog has ever been saved, so an empty saved catalog can be told
// apart from a fresh database.
type CatalogRepository interface {
	LoadCatalog(ctx context.Context) (items models.Catalog, stored bool, err error)
	SaveCatalog(ctx context.Context, items models.Catalog) error
}

var menuItemColumns = []string{
	"position", "id", "name", "price", "type", "category",
	"description", "image", "availability", "popular", "pricing_options",
}

// PostgresCatalogRepository keeps the catalog in the menu_items table, one
// row per item, ordered by position.
type PostgresCatalogRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalogRepository(pool *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{pool: pool}
}

func (r *PostgresCatalogRepository) LoadCatalog(ctx context.Context) (models.Catalog, bool, error) {
	var stored bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM catalog_meta)`).Scan(&stored); err != nil {
		return nil, false, fmt.Errorf("query catalog meta: %w", err)
	}
	if !stored {
		return nil, false, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price, type, category, description, image,
		       availability, popular, pricing_options
		FROM menu_items
		ORDER BY position`,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	items := models.Catalog{}
	for rows.Next() {
		var it models.MenuItem
		var opts []byte
		if err := rows.Scan(
			&it.ID, &it.Name, &it.Price, &it.Type, &it.Category, &it.Description,
			&it.Image, &it.Availability, &it.Popular, &opts,
		); err != nil {
			return nil, false, fmt.Errorf("scan menu item: %w", err)
		}
		if it.PricingOptions, err = decodePricingOptions(opts); err != nil {
			return nil, false, fmt.Errorf("menu item %q: %w", it.ID, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// SaveCatalog swaps the stored catalog for items inside one transaction.
func (r *PostgresCatalogRepository) SaveCatalog(ctx context.Context, items models.Catalog) error {
	rows := make([][]any, len(items))
	for i, it := range items {
		opts, err := encodePricingOptions(it.PricingOptions)
		if err != nil {
			return fmt.Errorf("menu item %q: %w", it.ID, err)
		}
		rows[i] = []any{
			i, it.ID, it.Name, it.Price, it.Type, it.Category,
			it.Description, it.Image, it.Availability, it.Popular, opts,
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM menu_items`); err != nil {
		return fmt.Errorf("clear menu items: %w", err)
	}
	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"menu_items"}, menuItemColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy menu items: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO catalog_meta (id, saved_at) VALUES (1, NOW())
		ON CONFLICT (id) DO UPDATE SET saved_at = EXCLUDED.saved_at`,
	); err != nil {
		return fmt.Errorf("mark catalog saved: %w", err)
	}
	return tx.Commit(ctx)
}

// encodePricingOptions maps nil to SQL NULL and anything else to JSON.
func encodePricingOptions(opts []models.PricingOption) ([]byte, error) {
	if opts == nil {
		return nil, nil
	}
	return json.Marshal(opts)
}

func decodePricingOptions(raw []byte) ([]models.PricingOption, error) {
	if raw == nil || string(raw) == "null" {
		return nil, nil
	}
	opts := []models.PricingOption{}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, fmt.Errorf("decode pricing options: %w", err)
	}
	return opts, nil
}

// CatalogPersister writes every replaced catalog through to a repository.
type CatalogPersister struct {
	repo CatalogRepository
	log  zerolog.Logger
}

func NewCatalogPersister(repo CatalogRepository, log zerolog.Logger) *CatalogPersister {
	return &CatalogPersister{repo: repo, log: log}
}

func (p *CatalogPersister) CatalogReplaced(ctx context.Context, items models.Catalog) {
	if err := p.repo.SaveCatalog(ctx, items); err != nil {
		p.log.Error().Err(err).Int("items", len(items)).Msg("persist catalog")
		return
	}
	p.log.Info().Int("items", len(items)).Msg("catalog persisted")
}

// InitialCatalog returns the stored catalog, seeding the repository with
// seed first when nothing has been stored yet. A stored empty catalog is
// returned as is.
func InitialCatalog(ctx context.Context, repo CatalogRepository, seed models.Catalog) (models.Catalog, error) {
	items, stored, err := repo.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if stored {
		return items, nil
	}
	if err := repo.SaveCatalog(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return seed, nil
}
