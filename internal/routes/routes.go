// Package routes knows the storefront's named routes and turns them into
// relative paths or absolute URLs.
package routes

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"solidus/sitemap/internal/domain"
)

const (
	Login         = "login"
	Signup        = "signup"
	Account       = "account"
	PasswordReset = "new_spree_user_password"
	Products      = "products"
	Product       = "product"
	NestedTaxons  = "nested_taxons"
	Page          = "page"
)

var (
	ErrUnknownRoute = errors.New("unknown route")
	ErrMissingParam = errors.New("missing route parameter")
	ErrMissingHost  = errors.New("missing host in url options")
)

// Route is a named path pattern. ":name" takes one escaped segment,
// "*name" takes a slash separated value.
type Route struct {
	Name    string
	Pattern string
}

var DefaultRoutes = []Route{
	{Name: Login, Pattern: "/login"},
	{Name: Signup, Pattern: "/signup"},
	{Name: Account, Pattern: "/account"},
	{Name: PasswordReset, Pattern: "/user/spree_user/password/new"},
	{Name: Products, Pattern: "/products"},
	{Name: Product, Pattern: "/products/:id"},
	{Name: NestedTaxons, Pattern: "/t/*id"},
	{Name: Page, Pattern: "/*id"},
}

type Router struct {
	mountPath string
	routes    []Route
	byName    map[string]Route
}

// NewRouter mounts routes (DefaultRoutes when none are given) under mountPath.
func NewRouter(mountPath string, routes ...Route) *Router {
	if len(routes) == 0 {
		routes = DefaultRoutes
	}

	r := &Router{
		mountPath: strings.TrimRight(mountPath, "/"),
		routes:    make([]Route, 0, len(routes)),
		byName:    make(map[string]Route, len(routes)),
	}
	for _, route := range routes {
		if _, exists := r.byName[route.Name]; !exists {
			r.routes = append(r.routes, route)
		}
		r.byName[route.Name] = route
	}
	return r
}

func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	for i, route := range r.routes {
		out[i] = r.byName[route.Name]
	}
	return out
}

// PathFor fills the placeholders of the named route in order.
func (r *Router) PathFor(name string, params ...string) (string, error) {
	route, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	segments := strings.Split(strings.TrimPrefix(route.Pattern, "/"), "/")
	next := 0
	for i, segment := range segments {
		if segment == "" || (segment[0] != ':' && segment[0] != '*') {
			continue
		}

		if next >= len(params) || params[next] == "" {
			return "", fmt.Errorf("%w: %s in route %s", ErrMissingParam, segment[1:], name)
		}
		value := params[next]
		next++

		if segment[0] == ':' {
			segments[i] = url.PathEscape(value)
		} else {
			segments[i] = escapeSegments(value)
		}
	}

	return r.mountPath + "/" + strings.Join(segments, "/"), nil
}

// URLFor builds an absolute URL for the named route.
func (r *Router) URLFor(name string, opts domain.URLOptions, params ...string) (string, error) {
	path, err := r.PathFor(name, params...)
	if err != nil {
		return "", err
	}
	return AbsoluteURL(opts, path)
}

func AbsoluteURL(opts domain.URLOptions, path string) (string, error) {
	host, _ := opts["host"].(string)
	if host == "" {
		return "", ErrMissingHost
	}

	protocol, _ := opts["protocol"].(string)
	protocol = strings.TrimSuffix(protocol, "://")
	if protocol == "" {
		protocol = "http"
	}

	switch port := opts["port"].(type) {
	case int:
		if port > 0 {
			host = fmt.Sprintf("%s:%d", host, port)
		}
	case string:
		if port != "" {
			host = host + ":" + port
		}
	}

	return protocol + "://" + host + path, nil
}

func escapeSegments(value string) string {
	parts := strings.Split(strings.Trim(value, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
