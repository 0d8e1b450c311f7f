package pathparam

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestDecodesOnce(t *testing.T) {
	tests := map[string]string{
		"/users/a@b.io":       "a@b.io",
		"/users/a%40b.io":     "a@b.io",
		"/users/a%2540b.io":   "a%40b.io",
		"/users/x%2Fy":        "x/y",
		"/users/Acme%20Co":    "Acme Co",
		"/users/plus+sign.io": "plus+sign.io",
	}

	for target, want := range tests {
		t.Run(target, func(t *testing.T) {
			r := chi.NewRouter()
			r.Use(Escaped)

			var got string
			r.Get("/users/{email}", func(w http.ResponseWriter, r *http.Request) {
				v, err := Get(r, "email")
				require.NoError(t, err)
				got = v
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, want, got)
		})
	}
}

func TestWithoutMiddlewareSlashSplits(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/users/{email}", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/x%2Fy", nil)
	req.URL.RawPath = ""
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
