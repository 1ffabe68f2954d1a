package routes

import (
	"errors"
	"testing"

	"solidus/sitemap/internal/domain"
)

func TestPathFor(t *testing.T) {
	r := NewRouter("")

	tests := []struct {
		name   string
		route  string
		params []string
		want   string
	}{
		{name: "login", route: Login, want: "/login"},
		{name: "password reset", route: PasswordReset, want: "/user/spree_user/password/new"},
		{name: "product index", route: Products, want: "/products"},
		{name: "product", route: Product, params: []string{"widget"}, want: "/products/widget"},
		{name: "product slug with slash is escaped", route: Product, params: []string{"a/b"}, want: "/products/a%2Fb"},
		{name: "taxon", route: NestedTaxons, params: []string{"sample-taxon"}, want: "/t/sample-taxon"},
		{name: "nested taxon keeps slashes", route: NestedTaxons, params: []string{"categories/bags"}, want: "/t/categories/bags"},
		{name: "nested taxon escapes segments", route: NestedTaxons, params: []string{"brands/a b"}, want: "/t/brands/a%20b"},
		{name: "page", route: Page, params: []string{"about-us"}, want: "/about-us"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.PathFor(tt.route, tt.params...)
			if err != nil {
				t.Fatalf("PathFor: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathForUnderMountPath(t *testing.T) {
	r := NewRouter("/shop/")

	got, err := r.PathFor(Product, "widget")
	if err != nil {
		t.Fatalf("PathFor: %v", err)
	}
	if got != "/shop/products/widget" {
		t.Fatalf("got %q", got)
	}
}

func TestPathForErrors(t *testing.T) {
	r := NewRouter("")

	if _, err := r.PathFor("spree_path"); !errors.Is(err, ErrUnknownRoute) {
		t.Fatalf("expected ErrUnknownRoute, got %v", err)
	}
	if _, err := r.PathFor(Product); !errors.Is(err, ErrMissingParam) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
	if _, err := r.PathFor(NestedTaxons, ""); !errors.Is(err, ErrMissingParam) {
		t.Fatalf("expected ErrMissingParam for empty value, got %v", err)
	}
}

func TestURLFor(t *testing.T) {
	r := NewRouter("")

	got, err := r.URLFor(Product, domain.URLOptions{"host": "shop.example.com", "protocol": "https"}, "widget")
	if err != nil {
		t.Fatalf("URLFor: %v", err)
	}
	if got != "https://shop.example.com/products/widget" {
		t.Fatalf("got %q", got)
	}

	got, err = r.URLFor(Login, domain.URLOptions{"host": "localhost", "port": 3000})
	if err != nil {
		t.Fatalf("URLFor: %v", err)
	}
	if got != "http://localhost:3000/login" {
		t.Fatalf("got %q", got)
	}

	if _, err := r.URLFor(Login, domain.URLOptions{}); !errors.Is(err, ErrMissingHost) {
		t.Fatalf("expected ErrMissingHost, got %v", err)
	}
}

func TestRoutesListsEveryNamedRoute(t *testing.T) {
	r := NewRouter("", append(DefaultRoutes, Route{Name: Login, Pattern: "/sign_in"})...)

	list := r.Routes()
	if len(list) != len(DefaultRoutes) {
		t.Fatalf("expected %d routes, got %d", len(DefaultRoutes), len(list))
	}
	if list[0].Name != Login || list[0].Pattern != "/sign_in" {
		t.Fatalf("expected overridden login route first, got %+v", list[0])
	}
}
