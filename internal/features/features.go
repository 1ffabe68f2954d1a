// Package features is a process-wide table of optional storefront extensions
// (CMS, videos and the like) that the sitemap may take into account.
package features

import (
	"runtime/debug"
	"sort"
	"strings"
	"sync"
)

const (
	StaticContent = "spree_static_content"
	EssentialsCMS = "spree_essentials_cms"
	Videos        = "spree_videos"
)

type Registry struct {
	mu    sync.RWMutex
	flags map[string]struct{}
}

func NewRegistry(names ...string) *Registry {
	r := &Registry{flags: make(map[string]struct{})}
	r.Register(names...)
	return r
}

// Default is populated once at startup and only read afterwards.
var Default = NewRegistry()

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *Registry) Register(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		if n := normalize(name); n != "" {
			r.flags[n] = struct{}{}
		}
	}
}

// Available never fails; unknown names are simply absent.
func (r *Registry) Available(name string) bool {
	if r == nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.flags[normalize(name)]
	return ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.flags))
	for name := range r.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterBuildInfo registers every module compiled into the running binary,
// so code can probe for an optional dependency by its module path.
func (r *Registry) RegisterBuildInfo() int {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return 0
	}

	count := 0
	for _, dep := range info.Deps {
		r.Register(dep.Path)
		count++
	}
	return count
}

func Register(names ...string) {
	Default.Register(names...)
}

func Available(name string) bool {
	return Default.Available(name)
}
