// Package pathparam makes chi route on the escaped request path so that
// identifiers containing "/" or "%" survive routing, and decodes route
// parameters exactly once.
package pathparam

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// Escaped must run before routing. chi matches on RawPath when it is set.
func Escaped(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := *r.URL
		u.RawPath = r.URL.EscapedPath()
		r2 := r.WithContext(r.Context())
		r2.URL = &u
		next.ServeHTTP(w, r2)
	})
}

// Get returns the decoded value of a route parameter
func Get(r *http.Request, name string) (string, error) {
	return url.PathUnescape(chi.URLParam(r, name))
}
