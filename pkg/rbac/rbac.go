// Package rbac implements capability-based access control.
//
// Administrative trust is not a single boolean at check sites: each elevated
// operation names the capability it needs, so narrowing a role later (e.g.
// "support can view orders but not download arbitrary files") is a one-line
// change in For, not an audit of every handler.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/kalakriti/pkg/middleware"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
)

// Capability names one elevated permission.
type Capability string

const (
	// CapManageCatalog allows product and discount writes.
	CapManageCatalog Capability = "catalog:manage"
	// CapDownloadAny bypasses the purchase check on downloads.
	CapDownloadAny Capability = "download:any"
	// CapUploadPrivate allows presigned uploads outside the public/ prefix.
	CapUploadPrivate Capability = "upload:private"
	// CapViewAllOrders allows reading every user's orders and the admin
	// order event stream.
	CapViewAllOrders Capability = "orders:view-all"
)

// For returns the capability set minted into a user's token.
// Admins currently receive every capability; regular users none.
func For(admin bool) []Capability {
	if !admin {
		return nil
	}
	return []Capability{CapManageCatalog, CapDownloadAny, CapUploadPrivate, CapViewAllOrders}
}

// Strings converts capabilities for embedding in JWT claims.
func Strings(caps []Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}

// Set answers membership queries over a claim's capability list.
type Set map[Capability]struct{}

// NewSet builds a Set from the string slice carried in JWT claims.
func NewSet(caps []string) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[Capability(c)] = struct{}{}
	}
	return s
}

// Has reports whether the set grants c.
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Require returns middleware that allows the request only when the
// authenticated claims carry the capability. Auth must run first.
func Require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := middleware.ClaimsFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w)
				return
			}
			if !NewSet(claims.Capabilities).Has(c) {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
