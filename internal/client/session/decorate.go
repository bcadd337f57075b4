package session

import (
	"net/http"

	"github.com/dmitrijs2005/docvault/internal/common"
)

// Decorate returns a shallow clone of req carrying the bearer access
// credential, or with any Authorization header removed when access is empty.
// req itself is never modified.
func Decorate(req *http.Request, access string) *http.Request {
	out := req.Clone(req.Context())
	if access == "" {
		out.Header.Del(common.AuthorizationHeaderName)
		return out
	}
	out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	return out
}
