package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "storefront:\n  host: shop.example.com\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storefront.Host != "shop.example.com" {
		t.Fatalf("unexpected host %q", cfg.Storefront.Host)
	}
	if cfg.Storefront.Protocol != "http" {
		t.Fatalf("unexpected protocol default %q", cfg.Storefront.Protocol)
	}
	if cfg.Catalog.Source != CatalogSourceDatabase {
		t.Fatalf("unexpected catalog source %q", cfg.Catalog.Source)
	}
	if cfg.Catalog.API.PerPage != 100 {
		t.Fatalf("unexpected per_page %d", cfg.Catalog.API.PerPage)
	}
	if cfg.Redis.ConsumerGroup != "sitemap_consumer" {
		t.Fatalf("unexpected consumer group %q", cfg.Redis.ConsumerGroup)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
storefront:
  host: shop.example.com
  protocol: https
catalog:
  source: api
  api:
    base_url: https://shop.example.com
    token: secret
sitemap:
  sections: [taxons, products]
  max_workers: 4
features:
  - spree_static_content
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Catalog.Source != CatalogSourceAPI || cfg.Catalog.API.Token != "secret" {
		t.Fatalf("unexpected catalog config %+v", cfg.Catalog)
	}
	if len(cfg.Sitemap.Sections) != 2 || cfg.Sitemap.Sections[1] != "products" {
		t.Fatalf("unexpected sections %v", cfg.Sitemap.Sections)
	}
	if cfg.Sitemap.MaxWorkers != 4 {
		t.Fatalf("unexpected max workers %d", cfg.Sitemap.MaxWorkers)
	}
	if len(cfg.Features) != 1 || cfg.Features[0] != "spree_static_content" {
		t.Fatalf("unexpected features %v", cfg.Features)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "storefront:\n  host: shop.example.com\n")
	t.Setenv("STOREFRONT_HOST", "env.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storefront.Host != "env.example.com" {
		t.Fatalf("expected env override, got %q", cfg.Storefront.Host)
	}
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	path := writeConfig(t, "catalog:\n  source: csv\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an unknown catalog source")
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "shop", User: "u", Password: "p", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=shop sslmode=disable"
	if got := d.DSN(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
