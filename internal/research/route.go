package research

import "fmt"

// ManualRoute builds a Route for a user-supplied override label without
// consulting the classifier. Unknown labels are honored with the default
// search count rather than rejected; the caller already chose to bypass
// auto-routing.
func ManualRoute(label string) Route {
	n, ok := canonicalSearches[RouteKind(label)]
	if !ok {
		n = defaultOverrideSearches
	}
	return Route{
		Kind:        RouteKind(label),
		Reasoning:   fmt.Sprintf("Manually selected %s route", label),
		NumSearches: n,
	}
}

// NormalizeClassified sanitizes a classifier-produced route. The classifier's
// search count is authoritative when positive; otherwise fall back to the
// canonical table (or the override default for labels we don't know).
func NormalizeClassified(r Route) Route {
	if r.NumSearches > 0 {
		return r
	}
	if n, ok := canonicalSearches[r.Kind]; ok {
		r.NumSearches = n
	} else {
		r.NumSearches = defaultOverrideSearches
	}
	return r
}
