package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"solidus/sitemap/internal/domain"
)

type pageParser struct {
	baseHost string
	selector string
}

func newPageParser(baseURL, selector string) *pageParser {
	host := ""
	if u, err := url.Parse(baseURL); err == nil {
		host = u.Host
	}
	if selector == "" {
		selector = "a[href^='/pages/']"
	}

	return &pageParser{
		baseHost: host,
		selector: selector,
	}
}

// ParsePageLinks returns one visible page per distinct same-site link matched by the selector.
func (p *pageParser) ParsePageLinks(html string) ([]domain.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	pages := make([]domain.Page, 0)
	seen := make(map[string]struct{})

	doc.Find(p.selector).Each(func(i int, link *goquery.Selection) {
		href, exists := link.Attr("href")
		if !exists {
			return
		}

		path, ok := p.localPath(href)
		if !ok {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}

		pages = append(pages, domain.Page{
			Slug:    strings.TrimPrefix(path, "/"),
			Path:    path,
			Visible: true,
		})
	})

	log.Debugf("Extracted %d page links", len(pages))
	return pages, nil
}

func (p *pageParser) localPath(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	if u.Host != "" && u.Host != p.baseHost {
		return "", false
	}

	path := strings.TrimRight(u.EscapedPath(), "/")
	if path == "" || !strings.HasPrefix(path, "/") {
		return "", false
	}
	return path, true
}
