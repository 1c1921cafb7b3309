package console

import (
	"garden-console/internal/server/http/middleware/security"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ d Dependencies }

func NewDashboardHandler(d Dependencies) *DashboardHandler { return &DashboardHandler{d: d} }

// Stats 개별 통계 실패는 0 으로 채워 200. 세션 만료만 401.
func (h *DashboardHandler) Stats(c *gin.Context) {
	sum, err := h.d.Dashboard.Stats(c.Request.Context(), client(c), security.CurrentUser(c))
	if err != nil {
		h.d.fail(c, err)
		return
	}
	response.Success(c, sum)
}
