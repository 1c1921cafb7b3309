package console

import (
	"context"
	"mime"
	"net/http"

	"garden-console/internal/domain/model"
	"garden-console/internal/pkg/cache"
	"garden-console/internal/search"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct{ d Dependencies }

func NewMessageHandler(d Dependencies) *MessageHandler { return &MessageHandler{d: d} }

func bindMessageFilter(c *gin.Context) (model.MessageSearchCondition, bool) {
	var f search.MessageFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return model.MessageSearchCondition{}, false
	}
	if err := f.Validate(); err != nil {
		badRequest(c, err)
		return model.MessageSearchCondition{}, false
	}
	return f.Condition(), true
}

func (h *MessageHandler) ListFlowers(c *gin.Context) {
	cond, ok := bindMessageFilter(c)
	if !ok {
		return
	}
	page, ok := h.d.listPage(c, nsFlowers, &cond)
	if !ok {
		return
	}
	cl := client(c)
	out, err := cache.Cached(c.Request.Context(), h.d.Lists, nsFlowers, cacheKey(c, &cond, &page),
		func(ctx context.Context) (*model.PageResponse[model.FlowerMessage], error) {
			return cl.ListFlowerMessages(ctx, &cond, page)
		})
	if err != nil {
		h.d.fail(c, err)
		return
	}
	response.Success(c, out)
}

func (h *MessageHandler) ListLeaves(c *gin.Context) {
	cond, ok := bindMessageFilter(c)
	if !ok {
		return
	}
	page, ok := h.d.listPage(c, nsLeaves, &cond)
	if !ok {
		return
	}
	cl := client(c)
	out, err := cache.Cached(c.Request.Context(), h.d.Lists, nsLeaves, cacheKey(c, &cond, &page),
		func(ctx context.Context) (*model.PageResponse[model.LeafMessage], error) {
			return cl.ListLeafMessages(ctx, &cond, page)
		})
	if err != nil {
		h.d.fail(c, err)
		return
	}
	response.Success(c, out)
}

// UpdateFlower 내용 검증(빈 값, 50자 초과)은 백엔드 호출 전에 한다
func (h *MessageHandler) UpdateFlower(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	var req model.FlowerMessageUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	msg, err := client(c).UpdateFlowerMessage(ctx, id, req)
	if err != nil {
		h.d.fail(c, err)
		return
	}
	h.d.invalidate(ctx, nsFlowers)
	response.Success(c, msg)
}

func (h *MessageHandler) DeleteFlower(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := client(c).DeleteFlowerMessage(ctx, id); err != nil {
		h.d.fail(c, err)
		return
	}
	h.d.invalidate(ctx, nsFlowers)
	response.Success(c, gin.H{"id": id})
}

func (h *MessageHandler) DeleteLeaf(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := client(c).DeleteLeafMessage(ctx, id); err != nil {
		h.d.fail(c, err)
		return
	}
	h.d.invalidate(ctx, nsLeaves)
	response.Success(c, gin.H{"id": id})
}

// Export 백엔드 엑셀 파일을 그대로 내려준다
func (h *MessageHandler) Export(c *gin.Context) {
	cond, ok := bindMessageFilter(c)
	if !ok {
		return
	}
	file, err := client(c).ExportMessages(c.Request.Context(), &cond)
	if err != nil {
		h.d.fail(c, err)
		return
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename})
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
