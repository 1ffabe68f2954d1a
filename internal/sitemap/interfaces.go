package sitemap

import (
	"context"

	"solidus/sitemap/internal/domain"
	"solidus/sitemap/internal/routes"
)

// Sink receives every location the enumerator produces. domain.Entries is the
// usual implementation; it must not be shared between concurrent runs.
type Sink interface {
	Add(loc string, opts domain.Options)
}

// Catalog returns storefront records in their natural order. Products are
// returned unfiltered; availability is decided by the enumerator.
type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Taxonomies(ctx context.Context) ([]domain.Taxonomy, error)
	Pages(ctx context.Context) ([]domain.Page, error)
}

// RouteProvider is the host application's url generation capability.
type RouteProvider interface {
	PathFor(name string, params ...string) (string, error)
	URLFor(name string, opts domain.URLOptions, params ...string) (string, error)
	Routes() []routes.Route
}

// FeatureSet answers whether an optional storefront extension is installed.
type FeatureSet interface {
	Available(name string) bool
}
