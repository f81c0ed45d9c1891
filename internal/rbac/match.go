package rbac

import "strings"

// MatchTemplate reports whether a concrete request path matches a stored
// route template. Templates use `:name` placeholders for parameterized
// segments; matching is structural, never substring-based.
func MatchTemplate(template, path string) bool {
	template = strings.Trim(strings.ToLower(template), "/")
	path = strings.Trim(strings.ToLower(path), "/")
	if template == path {
		return true
	}
	tsegs := strings.Split(template, "/")
	psegs := strings.Split(path, "/")
	if len(tsegs) != len(psegs) {
		return false
	}
	for i, tseg := range tsegs {
		if strings.HasPrefix(tseg, ":") {
			if psegs[i] == "" {
				return false
			}
			continue
		}
		if tseg != psegs[i] {
			return false
		}
	}
	return true
}

// MatchAny reports whether path matches any of the templates.
func MatchAny(path string, templates []string) bool {
	for _, tpl := range templates {
		if MatchTemplate(tpl, path) {
			return true
		}
	}
	return false
}
