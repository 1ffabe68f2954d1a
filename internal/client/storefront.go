package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"solidus/sitemap/internal/config"
	"solidus/sitemap/internal/domain"
	"solidus/sitemap/internal/proxy"
)

// StorefrontClient reads the catalog through the Solidus JSON API and
// discovers CMS pages from the storefront HTML.
type StorefrontClient struct {
	rl         ratelimit.Limiter
	config     config.APIConfig
	httpClient *resty.Client
	parser     *pageParser
	proxies    proxy.Supplier
}

// NewStorefrontClient builds the API client; proxies may be nil.
func NewStorefrontClient(cfg config.APIConfig, proxies proxy.Supplier) *StorefrontClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "solidus-sitemap/1.0")

	if cfg.Token != "" {
		client.SetHeader("X-Spree-Token", cfg.Token)
	}

	if proxies != nil {
		if proxyURL := proxies.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rps := cfg.MaxRequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	return &StorefrontClient{
		rl:         ratelimit.New(rps),
		config:     cfg,
		httpClient: client,
		parser:     newPageParser(cfg.BaseURL, cfg.PageLinkSelector),
		proxies:    proxies,
	}
}

type paginated struct {
	CurrentPage int `json:"current_page"`
	Pages       int `json:"pages"`
}

type apiProduct struct {
	ID            int64      `json:"id"`
	Slug          string     `json:"slug"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	AvailableOn   *time.Time `json:"available_on"`
	DiscontinueOn *time.Time `json:"discontinue_on"`
	DeletedAt     *time.Time `json:"deleted_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type productsResponse struct {
	paginated
	Products []apiProduct `json:"products"`
}

type apiTaxon struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Permalink string     `json:"permalink"`
	UpdatedAt *time.Time `json:"updated_at"`
	Taxons    []apiTaxon `json:"taxons"`
}

type apiTaxonomy struct {
	ID   int64    `json:"id"`
	Name string   `json:"name"`
	Root apiTaxon `json:"root"`
}

type taxonomiesResponse struct {
	paginated
	Taxonomies []apiTaxonomy `json:"taxonomies"`
}

// Products walks every page of /api/products, deleted products included.
func (c *StorefrontClient) Products(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0)

	for page := 1; ; page++ {
		var resp productsResponse
		if err := c.getJSON(ctx, "/api/products", map[string]string{"show_deleted": "true"}, page, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch products page %d: %w", page, err)
		}

		for _, p := range resp.Products {
			products = append(products, domain.Product{
				ID:            p.ID,
				Slug:          p.Slug,
				Name:          p.Name,
				Description:   p.Description,
				AvailableOn:   p.AvailableOn,
				DiscontinueOn: p.DiscontinueOn,
				SoftDeleted:   p.DeletedAt != nil,
				UpdatedAt:     p.UpdatedAt,
			})
		}

		if resp.Pages <= page || len(resp.Products) == 0 {
			break
		}
	}

	log.Debugf("Fetched %d products from %s", len(products), c.config.BaseURL)
	return products, nil
}

func (c *StorefrontClient) Taxonomies(ctx context.Context) ([]domain.Taxonomy, error) {
	taxonomies := make([]domain.Taxonomy, 0)

	for page := 1; ; page++ {
		var resp taxonomiesResponse
		if err := c.getJSON(ctx, "/api/taxonomies", map[string]string{"set": "nested"}, page, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch taxonomies page %d: %w", page, err)
		}

		for _, t := range resp.Taxonomies {
			taxonomy := domain.Taxonomy{
				ID:          t.ID,
				Name:        t.Name,
				Slug:        t.Root.Permalink,
				LastUpdated: t.Root.UpdatedAt,
			}
			taxonomy.Taxons = flattenTaxons(t.Root.Taxons, 1, nil)
			taxonomies = append(taxonomies, taxonomy)
		}

		if resp.Pages <= page || len(resp.Taxonomies) == 0 {
			break
		}
	}

	log.Debugf("Fetched %d taxonomies from %s", len(taxonomies), c.config.BaseURL)
	return taxonomies, nil
}

// flattenTaxons lists a nested taxon tree in pre-order.
func flattenTaxons(taxons []apiTaxon, depth int, out []domain.Taxon) []domain.Taxon {
	for _, t := range taxons {
		out = append(out, domain.Taxon{
			ID:          t.ID,
			Name:        t.Name,
			Slug:        t.Permalink,
			Depth:       depth,
			LastUpdated: t.UpdatedAt,
		})
		out = flattenTaxons(t.Taxons, depth+1, out)
	}
	return out
}

// Pages scrapes CMS page links from the configured storefront page.
func (c *StorefrontClient) Pages(ctx context.Context) ([]domain.Page, error) {
	html, err := c.fetchHTML(ctx, c.config.PagesIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pages index: %w", err)
	}

	pages, err := c.parser.ParsePageLinks(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pages index: %w", err)
	}

	return pages, nil
}

func (c *StorefrontClient) getJSON(ctx context.Context, path string, params map[string]string, page int, result any) error {
	c.rl.Take()

	perPage := c.config.PerPage
	if perPage <= 0 {
		perPage = 100
	}

	send := func() (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetQueryParam("page", strconv.Itoa(page)).
			SetQueryParam("per_page", strconv.Itoa(perPage)).
			SetResult(result).
			Get(path)
	}

	resp, err := send()
	if err == nil && c.rotateProxy(resp) {
		resp, err = send()
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}

	if resp.IsError() {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return nil
}

func (c *StorefrontClient) fetchHTML(ctx context.Context, path string) (string, error) {
	c.rl.Take()

	send := func() (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetHeader("Accept", "text/html,application/xhtml+xml").
			Get(path)
	}

	resp, err := send()
	if err == nil && c.rotateProxy(resp) {
		resp, err = send()
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return resp.String(), nil
}

// rotateProxy switches to the next proxy when the storefront throttles us.
// It reports whether the request is worth sending again.
func (c *StorefrontClient) rotateProxy(resp *resty.Response) bool {
	if resp.StatusCode() != http.StatusTooManyRequests && resp.StatusCode() != http.StatusServiceUnavailable {
		return false
	}
	if c.proxies == nil || c.proxies.Len() < 2 {
		return false
	}

	next := c.proxies.Get()
	log.Warnf("🚫 Storefront answered %d, switching to proxy %s", resp.StatusCode(), next)
	c.httpClient.SetProxy(next)
	return true
}
