// Package sitemap enumerates the public storefront locations that belong in a sitemap.
package sitemap

import (
	"context"
	"time"

	"solidus/sitemap/internal/domain"
	"solidus/sitemap/internal/features"
	"solidus/sitemap/internal/routes"
)

type Enumerator struct {
	sink       Sink
	catalog    Catalog
	router     RouteProvider
	features   FeatureSet
	urlOptions domain.URLOptions
	now        func() time.Time
}

type Option func(*Enumerator)

func WithClock(now func() time.Time) Option {
	return func(e *Enumerator) {
		e.now = now
	}
}

func WithFeatures(set FeatureSet) Option {
	return func(e *Enumerator) {
		e.features = set
	}
}

func WithDefaultURLOptions(opts domain.URLOptions) Option {
	return func(e *Enumerator) {
		e.urlOptions = opts
	}
}

// New builds an enumerator for one generation run.
func New(sink Sink, catalog Catalog, router RouteProvider, opts ...Option) *Enumerator {
	e := &Enumerator{
		sink:     sink,
		catalog:  catalog,
		router:   router,
		features: features.Default,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Enumerator) AddLogin(opts domain.Options) error {
	return e.addRoute(routes.Login, opts)
}

func (e *Enumerator) AddSignup(opts domain.Options) error {
	return e.addRoute(routes.Signup, opts)
}

func (e *Enumerator) AddAccount(opts domain.Options) error {
	return e.addRoute(routes.Account, opts)
}

func (e *Enumerator) AddPasswordReset(opts domain.Options) error {
	return e.addRoute(routes.PasswordReset, opts)
}

// AddPages adds the visible CMS pages. Without a CMS extension the storefront
// has no pages and nothing is added.
func (e *Enumerator) AddPages(ctx context.Context, opts domain.Options) error {
	if !e.FeatureAvailable(features.StaticContent) && !e.FeatureAvailable(features.EssentialsCMS) {
		return nil
	}

	pages, err := e.catalog.Pages(ctx)
	if err != nil {
		return err
	}

	for _, page := range pages {
		if !page.Visible {
			continue
		}

		loc := page.Path
		if loc == "" {
			if page.Slug == "" {
				continue
			}
			if loc, err = e.router.PathFor(routes.Page, page.Slug); err != nil {
				return err
			}
		}
		e.sink.Add(loc, withLastmod(opts, page.UpdatedAt))
	}
	return nil
}

// AddProducts adds the product index followed by every available product.
func (e *Enumerator) AddProducts(ctx context.Context, opts domain.Options) error {
	products, err := e.catalog.Products(ctx)
	if err != nil {
		return err
	}

	now := e.now()
	available := make([]domain.Product, 0, len(products))
	var lastUpdated time.Time
	for _, product := range products {
		if !product.Available(now) {
			continue
		}
		available = append(available, product)
		if product.UpdatedAt.After(lastUpdated) {
			lastUpdated = product.UpdatedAt
		}
	}

	index, err := e.router.PathFor(routes.Products)
	if err != nil {
		return err
	}
	e.sink.Add(index, withLastmod(opts, lastUpdated))

	for _, product := range available {
		if err := e.AddProduct(product, opts); err != nil {
			return err
		}
	}
	return nil
}

// AddProduct adds a single product as given. Callers decide whether it is listable.
func (e *Enumerator) AddProduct(product domain.Product, opts domain.Options) error {
	loc, err := e.router.PathFor(routes.Product, product.Slug)
	if err != nil {
		return err
	}

	entryOpts := withLastmod(opts, product.UpdatedAt)
	if e.FeatureAvailable(features.Videos) && len(product.Videos) > 0 {
		// Only the first video, to avoid duplicate title warnings.
		entryOpts["video"] = []domain.Options{e.videoOptions(product.Videos[0], product)}
	}

	e.sink.Add(loc, entryOpts)
	return nil
}

// AddTaxons adds each taxonomy root followed by its taxons.
func (e *Enumerator) AddTaxons(ctx context.Context, opts domain.Options) error {
	taxonomies, err := e.catalog.Taxonomies(ctx)
	if err != nil {
		return err
	}

	for _, taxonomy := range taxonomies {
		root := domain.Taxon{ID: taxonomy.ID, Name: taxonomy.Name, Slug: taxonomy.Slug, LastUpdated: taxonomy.LastUpdated}
		if err := e.AddTaxon(root, opts); err != nil {
			return err
		}
		for _, taxon := range taxonomy.Taxons {
			if err := e.AddTaxon(taxon, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Enumerator) AddTaxon(taxon domain.Taxon, opts domain.Options) error {
	if taxon.Slug == "" {
		return nil
	}

	loc, err := e.router.PathFor(routes.NestedTaxons, taxon.Slug)
	if err != nil {
		return err
	}

	var lastmod time.Time
	if taxon.LastUpdated != nil {
		lastmod = *taxon.LastUpdated
	}
	e.sink.Add(loc, withLastmod(opts, lastmod))
	return nil
}

// DefaultURLOptions returns a copy of the host/protocol settings; never nil.
func (e *Enumerator) DefaultURLOptions() domain.URLOptions {
	out := make(domain.URLOptions, len(e.urlOptions))
	for k, v := range e.urlOptions {
		out[k] = v
	}
	return out
}

func (e *Enumerator) FeatureAvailable(name string) bool {
	if e.features == nil {
		return false
	}
	return e.features.Available(name)
}

func (e *Enumerator) MainApp() RouteProvider {
	return e.router
}

func (e *Enumerator) addRoute(name string, opts domain.Options) error {
	loc, err := e.router.PathFor(name)
	if err != nil {
		return err
	}
	e.sink.Add(loc, opts.Merge(nil))
	return nil
}

func (e *Enumerator) videoOptions(video domain.Video, product domain.Product) domain.Options {
	title := video.Title
	if title == "" {
		title = product.Name
	}

	return domain.Options{
		"thumbnail_loc": "http://img.youtube.com/vi/" + video.YouTubeRef + "/0.jpg",
		"title":         title,
		"description":   product.Description,
		"player_loc":    "http://www.youtube.com/v/" + video.YouTubeRef,
		"autoplay":      "ap=1",
	}
}

func withLastmod(opts domain.Options, lastmod time.Time) domain.Options {
	if lastmod.IsZero() {
		return opts.Merge(nil)
	}
	return opts.Merge(domain.Options{"lastmod": lastmod})
}
