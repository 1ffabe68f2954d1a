package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"solidus/sitemap/internal/domain"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CatalogRepository reads sitemap records straight from a Solidus database.
type CatalogRepository struct {
	db         Querier
	withVideos bool
}

func NewCatalogRepository(db Querier, withVideos bool) *CatalogRepository {
	return &CatalogRepository{
		db:         db,
		withVideos: withVideos,
	}
}

const productsQuery = `
	SELECT p.id, p.slug, p.name, COALESCE(p.description, ''),
	       p.available_on, p.discontinue_on,
	       p.deleted_at IS NOT NULL AS soft_deleted,
	       p.updated_at
	FROM spree_products p
	ORDER BY p.id`

const videosQuery = `
	SELECT v.watchable_id, v.youtube_ref
	FROM spree_videos v
	WHERE v.watchable_type = 'Spree::Product'
	ORDER BY v.watchable_id, v.position`

const taxonsQuery = `
	SELECT t.taxonomy_id, tx.name, t.id, t.name, COALESCE(t.permalink, ''),
	       t.parent_id IS NULL AS is_root, COALESCE(t.depth, 0),
	       (SELECT MAX(p.updated_at)
	          FROM spree_products p
	          JOIN spree_products_taxons pt ON pt.product_id = p.id
	         WHERE pt.taxon_id = t.id) AS last_updated
	FROM spree_taxons t
	JOIN spree_taxonomies tx ON tx.id = t.taxonomy_id
	ORDER BY tx.position, tx.id, t.lft`

const pagesQuery = `
	SELECT COALESCE(pg.slug, ''), pg.visible, pg.updated_at
	FROM spree_pages pg
	ORDER BY pg.position, pg.id`

// Products returns every product, including unavailable and soft deleted ones.
func (r *CatalogRepository) Products(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, productsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description,
			&p.AvailableOn, &p.DiscontinueOn, &p.SoftDeleted, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	if r.withVideos {
		if err := r.attachVideos(ctx, products, index); err != nil {
			return nil, err
		}
	}

	log.Debugf("Loaded %d products from database", len(products))
	return products, nil
}

func (r *CatalogRepository) attachVideos(ctx context.Context, products []domain.Product, index map[int64]int) error {
	rows, err := r.db.Query(ctx, videosQuery)
	if err != nil {
		return fmt.Errorf("failed to query product videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var video domain.Video
		if err := rows.Scan(&productID, &video.YouTubeRef); err != nil {
			return fmt.Errorf("failed to scan product video: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Videos = append(products[i].Videos, video)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read product videos: %w", err)
	}
	return nil
}

type taxonRow struct {
	TaxonomyID   int64
	TaxonomyName string
	Taxon        domain.Taxon
	IsRoot       bool
}

func (r *CatalogRepository) Taxonomies(ctx context.Context) ([]domain.Taxonomy, error) {
	rows, err := r.db.Query(ctx, taxonsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query taxons: %w", err)
	}
	defer rows.Close()

	taxonRows := make([]taxonRow, 0)
	for rows.Next() {
		var row taxonRow
		var lastUpdated *time.Time
		if err := rows.Scan(&row.TaxonomyID, &row.TaxonomyName, &row.Taxon.ID, &row.Taxon.Name,
			&row.Taxon.Slug, &row.IsRoot, &row.Taxon.Depth, &lastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan taxon: %w", err)
		}
		row.Taxon.LastUpdated = lastUpdated
		taxonRows = append(taxonRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read taxons: %w", err)
	}

	taxonomies := groupTaxons(taxonRows)
	log.Debugf("Loaded %d taxonomies (%d taxons) from database", len(taxonomies), len(taxonRows))
	return taxonomies, nil
}

// groupTaxons folds rows ordered by taxonomy then nested-set position into
// taxonomies, keeping the order in which each taxonomy first appears.
func groupTaxons(rows []taxonRow) []domain.Taxonomy {
	taxonomies := make([]domain.Taxonomy, 0)
	index := make(map[int64]int)

	for _, row := range rows {
		i, ok := index[row.TaxonomyID]
		if !ok {
			i = len(taxonomies)
			index[row.TaxonomyID] = i
			taxonomies = append(taxonomies, domain.Taxonomy{ID: row.TaxonomyID, Name: row.TaxonomyName})
		}

		if row.IsRoot {
			taxonomies[i].Slug = row.Taxon.Slug
			taxonomies[i].LastUpdated = row.Taxon.LastUpdated
			continue
		}
		taxonomies[i].Taxons = append(taxonomies[i].Taxons, row.Taxon)
	}

	return taxonomies
}

func (r *CatalogRepository) Pages(ctx context.Context) ([]domain.Page, error) {
	rows, err := r.db.Query(ctx, pagesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	pages := make([]domain.Page, 0)
	for rows.Next() {
		var page domain.Page
		if err := rows.Scan(&page.Slug, &page.Visible, &page.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		// Static content slugs are stored with their leading slash.
		if strings.HasPrefix(page.Slug, "/") {
			page.Path = page.Slug
			page.Slug = strings.TrimPrefix(page.Slug, "/")
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pages: %w", err)
	}

	return pages, nil
}
