package registry

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Entry is one concrete (method, uri) pair discovered from the router. URIs
// are stored in template form with `:param` placeholders.
type Entry struct {
	Method string
	URI    string
}

// Registry enumerates the protected route surface of a mounted router.
// Paths under the excluded prefixes (health, metrics, login, registration)
// never become permission objects.
type Registry struct {
	exclude []string
}

// New constructs a registry that skips the given path prefixes.
func New(exclude ...string) *Registry {
	normalized := make([]string, 0, len(exclude))
	for _, prefix := range exclude {
		normalized = append(normalized, strings.ToLower(strings.TrimSuffix(prefix, "/")))
	}
	return &Registry{exclude: normalized}
}

// FromRouter walks the routing tree and returns every registered route as a
// normalized entry, deduplicated and in deterministic (uri, method) order.
func (reg *Registry) FromRouter(r chi.Routes) ([]Entry, error) {
	seen := map[Entry]struct{}{}
	walker := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		entry := Entry{Method: strings.ToUpper(method), URI: NormalizeURI(route)}
		if reg.excluded(entry.URI) {
			return nil
		}
		seen[entry] = struct{}{}
		return nil
	}
	if err := chi.Walk(r, walker); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(seen))
	for entry := range seen {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].URI != entries[j].URI {
			return entries[i].URI < entries[j].URI
		}
		return entries[i].Method < entries[j].Method
	})
	return entries, nil
}

func (reg *Registry) excluded(uri string) bool {
	for _, prefix := range reg.exclude {
		if uri == prefix || strings.HasPrefix(uri, prefix+"/") {
			return true
		}
	}
	return false
}

// NormalizeURI lowercases a route pattern, strips any trailing slash and
// rewrites chi `{param}` placeholders to `:param` template segments.
func NormalizeURI(route string) string {
	route = strings.ToLower(route)
	if len(route) > 1 {
		route = strings.TrimSuffix(route, "/")
	}
	segments := strings.Split(route, "/")
	for i, segment := range segments {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			name := strings.TrimSuffix(strings.TrimPrefix(segment, "{"), "}")
			// chi regex params look like {id:[0-9]+}; the template keeps
			// only the name.
			if colon := strings.IndexByte(name, ':'); colon >= 0 {
				name = name[:colon]
			}
			segments[i] = ":" + name
		}
	}
	return strings.Join(segments, "/")
}
