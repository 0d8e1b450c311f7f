package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/edyou/engine-dashboard/internal/client"
	"github.com/edyou/engine-dashboard/internal/models"
)

// MaxJSONDisplay is how many runes of a JSON field are shown before truncation
const MaxJSONDisplay = 200

const ellipsis = "…"

// AllowedDays are the dashboard windows offered to the user
var AllowedDays = []int{7, 14, 30}

// ParsePage reads limit and offset from the query. Absent, non-numeric and
// negative values fall back to 50 and 0; limit is capped at 500.
func ParsePage(q url.Values) (limit, offset int) {
	limit, err := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
	if err != nil {
		limit = client.DefaultLimit
	}
	offset, err = strconv.Atoi(strings.TrimSpace(q.Get("offset")))
	if err != nil {
		offset = client.DefaultOffset
	}
	return client.NormalizePage(limit, offset)
}

// ParseDays accepts only the offered windows and defaults to 7
func ParseDays(s string) int {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return client.DefaultDays
	}
	for _, d := range AllowedDays {
		if d == days {
			return days
		}
	}
	return client.DefaultDays
}

// TruncateJSON renders a JSON field for display. Anything longer than 200
// runes is cut to 200 and followed by a single ellipsis. The underlying
// value is untouched.
func TruncateJSON(v models.JSON) string {
	return truncate(v.String(), MaxJSONDisplay)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + ellipsis
		}
		i++
	}
	return s
}

// noStore marks every page as uncacheable
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// tenantUsersPath is the link to a tenant's users page
func tenantUsersPath(tenantName string) string {
	return "/tenants/" + url.PathEscape(tenantName) + "/users"
}

// userPath is the link to a user's overview page
func userPath(email string) string {
	return "/users/" + url.PathEscape(email)
}
