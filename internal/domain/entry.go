package domain

// Options are per-entry sitemap attributes such as lastmod, priority or changefreq.
// Keys the enumerator does not know are carried through untouched.
type Options map[string]any

// Merge returns a copy of o with the keys of other laid over it.
func (o Options) Merge(other Options) Options {
	merged := make(Options, len(o)+len(other))
	for k, v := range o {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// URLOptions hold what is needed to turn a relative path into an absolute URL
// (host, protocol, port).
type URLOptions map[string]any

type Entry struct {
	Loc     string  `json:"loc"`
	Options Options `json:"options,omitempty"`
}

// Entries is an append-only, unsynchronized sink owned by a single generation run.
type Entries struct {
	items []Entry
}

func (e *Entries) Add(loc string, opts Options) {
	e.items = append(e.items, Entry{Loc: loc, Options: opts})
}

func (e *Entries) Items() []Entry {
	return e.items
}

// Paths returns the locations in insertion order.
func (e *Entries) Paths() []string {
	paths := make([]string, 0, len(e.items))
	for _, item := range e.items {
		paths = append(paths, item.Loc)
	}
	return paths
}

func (e *Entries) Len() int {
	return len(e.items)
}

// Reset drops everything appended so far.
func (e *Entries) Reset() {
	e.items = nil
}
