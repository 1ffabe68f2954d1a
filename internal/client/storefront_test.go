package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"solidus/sitemap/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *StorefrontClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewStorefrontClient(config.APIConfig{
		BaseURL:              srv.URL,
		Token:                "secret",
		Timeout:              5,
		MaxRetries:           0,
		PerPage:              2,
		MaxRequestsPerSecond: 1000,
		PagesIndex:           "/",
	}, nil)
}

func TestProductsWalksPages(t *testing.T) {
	var seenTokens []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" {
			http.NotFound(w, r)
			return
		}
		seenTokens = append(seenTokens, r.Header.Get("X-Spree-Token"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"current_page":1,"pages":2,"products":[
				{"id":1,"slug":"widget","name":"Widget","updated_at":"2026-10-01T00:00:00Z"},
				{"id":2,"slug":"future-widget","name":"Future","available_on":"2026-10-24T00:00:00Z"}]}`))
		case "2":
			w.Write([]byte(`{"current_page":2,"pages":2,"products":[
				{"id":3,"slug":"gone-widget","name":"Gone","deleted_at":"2026-09-01T00:00:00Z"}]}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}

	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if products[1].AvailableOn == nil {
		t.Fatalf("available_on not decoded")
	}
	if products[0].SoftDeleted || !products[2].SoftDeleted {
		t.Fatalf("soft delete not derived from deleted_at: %+v", products)
	}
	if products[0].UpdatedAt.IsZero() {
		t.Fatalf("updated_at not decoded")
	}
	for _, token := range seenTokens {
		if token != "secret" {
			t.Fatalf("missing API token, got %q", token)
		}
	}
}

func TestProductsHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusUnauthorized)
	})

	if _, err := client.Products(context.Background()); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestTaxonomiesFlattensTree(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("set") != "nested" {
			t.Errorf("expected nested set, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_page":1,"pages":1,"taxonomies":[
			{"id":1,"name":"Categories","root":{"id":10,"name":"Categories","permalink":"categories","taxons":[
				{"id":11,"name":"Bags","permalink":"categories/bags","taxons":[
					{"id":12,"name":"Totes","permalink":"categories/bags/totes","taxons":[]}]},
				{"id":13,"name":"Mugs","permalink":"categories/mugs","taxons":[]}]}},
			{"id":2,"name":"Sample taxonomy","root":{"id":20,"name":"Sample taxonomy","permalink":"sample-taxonomy","taxons":[
				{"id":21,"name":"Sample taxon","permalink":"sample-taxon","taxons":[]}]}}]}`))
	})

	taxonomies, err := client.Taxonomies(context.Background())
	if err != nil {
		t.Fatalf("Taxonomies: %v", err)
	}

	if len(taxonomies) != 2 || taxonomies[0].Slug != "categories" {
		t.Fatalf("unexpected taxonomies %+v", taxonomies)
	}

	var slugs []string
	var depths []int
	for _, taxon := range taxonomies[0].Taxons {
		slugs = append(slugs, taxon.Slug)
		depths = append(depths, taxon.Depth)
	}
	if !reflect.DeepEqual(slugs, []string{"categories/bags", "categories/bags/totes", "categories/mugs"}) {
		t.Fatalf("unexpected pre-order %v", slugs)
	}
	if !reflect.DeepEqual(depths, []int{1, 2, 1}) {
		t.Fatalf("unexpected depths %v", depths)
	}
}

func TestPagesScrapesLinks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><footer>
			<a href="/pages/about">About</a>
			<a href="/pages/terms/">Terms</a>
			<a href="/pages/about">About again</a>
			<a href="https://elsewhere.example.com/pages/x">Elsewhere</a>
			<a href="/products">Products</a>
		</footer></body></html>`))
	})

	pages, err := client.Pages(context.Background())
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}

	var paths []string
	for _, page := range pages {
		if !page.Visible {
			t.Fatalf("scraped page should be visible: %+v", page)
		}
		paths = append(paths, page.Path)
	}
	if !reflect.DeepEqual(paths, []string{"/pages/about", "/pages/terms"}) {
		t.Fatalf("unexpected pages %v", paths)
	}
	if pages[0].Slug != "pages/about" {
		t.Fatalf("unexpected slug %q", pages[0].Slug)
	}
}

type fixedProxies struct {
	urls []string
	next int
}

func (f *fixedProxies) Get() string {
	url := f.urls[f.next%len(f.urls)]
	f.next++
	return url
}

func (f *fixedProxies) Len() int {
	return len(f.urls)
}

func TestThrottledRequestSwitchesProxy(t *testing.T) {
	// Answers absolute-form requests like a forward proxy would.
	forward := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_page":1,"pages":1,"products":[{"id":1,"slug":"widget"}]}`))
	}))
	defer forward.Close()

	throttled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer throttled.Close()

	// The first Get is consumed by the constructor; an empty first proxy means a direct connection.
	proxies := &fixedProxies{urls: []string{"", forward.URL}}
	client := NewStorefrontClient(config.APIConfig{
		BaseURL:              throttled.URL,
		Timeout:              5,
		PerPage:              10,
		MaxRequestsPerSecond: 1000,
	}, proxies)

	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 || products[0].Slug != "widget" {
		t.Fatalf("expected the proxied response, got %+v", products)
	}
}
