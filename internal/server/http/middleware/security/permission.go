package security

import (
	"net/http"

	"garden-console/internal/authz"
	"garden-console/internal/util/retcode"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireCapability Auth 뒤에 둔다. 등급이 모자라면 403.
func RequireCapability(capability authz.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authz.Allows(CurrentUser(c), capability) {
			response.Abort(c, http.StatusForbidden, retcode.AUTH_ERROR, "", gin.H{"requires": capability})
			return
		}
		c.Next()
	}
}
