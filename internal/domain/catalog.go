package domain

import "time"

type Video struct {
	YouTubeRef string `json:"youtube_ref"`
	Title      string `json:"title,omitempty"`
}

// Product is a storefront product as seen by the sitemap.
// SoftDeleted is computed once by the catalog, whatever the host uses to mark removal.
type Product struct {
	ID            int64      `json:"id"`
	Slug          string     `json:"slug"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	AvailableOn   *time.Time `json:"available_on,omitempty"`
	DiscontinueOn *time.Time `json:"discontinue_on,omitempty"`
	SoftDeleted   bool       `json:"soft_deleted"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Videos        []Video    `json:"videos,omitempty"`
}

// Available reports whether the product may be listed at the given moment.
func (p Product) Available(now time.Time) bool {
	if p.SoftDeleted {
		return false
	}
	if p.AvailableOn != nil && p.AvailableOn.After(now) {
		return false
	}
	if p.DiscontinueOn != nil && p.DiscontinueOn.Before(now) {
		return false
	}
	return true
}

// Taxonomy is a root of the taxon tree. Slug is the permalink of its root taxon.
type Taxonomy struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Taxons      []Taxon    `json:"taxons"` // Non-root taxons, pre-order
}

// Taxon slug is the full permalink, e.g. "categories/bags".
type Taxon struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Depth       int        `json:"depth"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

type Page struct {
	Slug      string    `json:"slug"`
	Path      string    `json:"path,omitempty"` // Explicit path, overrides the slug route
	Visible   bool      `json:"visible"`
	UpdatedAt time.Time `json:"updated_at"`
}
