package console

import (
	"context"

	"garden-console/internal/domain/model"
	"garden-console/internal/pkg/cache"
	"garden-console/internal/search"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
)

type LogHandler struct{ d Dependencies }

func NewLogHandler(d Dependencies) *LogHandler { return &LogHandler{d: d} }

func bindLogFilter(c *gin.Context) (model.LogSearchCondition, bool) {
	var f search.LogFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return model.LogSearchCondition{}, false
	}
	if err := f.Validate(); err != nil {
		badRequest(c, err)
		return model.LogSearchCondition{}, false
	}
	return f.Condition(), true
}

func (h *LogHandler) Logins(c *gin.Context) {
	cond, ok := bindLogFilter(c)
	if !ok {
		return
	}
	cond.ActType = nil
	page, ok := h.d.listPage(c, nsLogins, &cond)
	if !ok {
		return
	}
	cl := client(c)
	out, err := cache.Cached(c.Request.Context(), h.d.Lists, nsLogins, cacheKey(c, &cond, &page),
		func(ctx context.Context) (*model.PageResponse[model.AdminLoginHistory], error) {
			return cl.ListLoginHistory(ctx, &cond, page)
		})
	if err != nil {
		h.d.fail(c, err)
		return
	}
	response.Success(c, out)
}

func (h *LogHandler) Activities(c *gin.Context) {
	cond, ok := bindLogFilter(c)
	if !ok {
		return
	}
	page, ok := h.d.listPage(c, nsActivities, &cond)
	if !ok {
		return
	}
	cl := client(c)
	out, err := cache.Cached(c.Request.Context(), h.d.Lists, nsActivities, cacheKey(c, &cond, &page),
		func(ctx context.Context) (*model.PageResponse[model.AdminActivityHistory], error) {
			return cl.ListActivityHistory(ctx, &cond, page)
		})
	if err != nil {
		h.d.fail(c, err)
		return
	}
	response.Success(c, out)
}
