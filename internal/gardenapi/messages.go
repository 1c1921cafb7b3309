package gardenapi

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"garden-console/internal/domain/model"
	"garden-console/internal/search"
)

func (c *Client) ListFlowerMessages(ctx context.Context, cond *model.MessageSearchCondition, page model.Pageable) (*model.PageResponse[model.FlowerMessage], error) {
	return c.listMessages(ctx, "flower.list", "/admin/flower-messages", cond, page)
}

func (c *Client) ListLeafMessages(ctx context.Context, cond *model.MessageSearchCondition, page model.Pageable) (*model.PageResponse[model.LeafMessage], error) {
	return c.listMessages(ctx, "leaf.list", "/admin/leaf-messages", cond, page)
}

func (c *Client) listMessages(ctx context.Context, op, path string, cond *model.MessageSearchCondition, page model.Pageable) (*model.PageResponse[model.Message], error) {
	q, err := search.Values(cond, &page)
	if err != nil {
		return nil, err
	}
	var out model.PageResponse[model.Message]
	if err := c.do(ctx, Call{Op: op, Method: http.MethodGet, Path: path, Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateFlowerContent 공백만 있는 본문과 50자 초과 본문을 거부한다.
func ValidateFlowerContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentEmpty
	}
	if utf8.RuneCountInString(content) > model.FlowerContentMaxLen {
		return ErrContentTooLong
	}
	return nil
}

// UpdateFlowerMessage 본문 검증에 실패하면 요청을 보내지 않는다.
func (c *Client) UpdateFlowerMessage(ctx context.Context, id int64, req model.FlowerMessageUpdateRequest) (*model.FlowerMessage, error) {
	if err := ValidateFlowerContent(req.Content); err != nil {
		return nil, err
	}
	var out model.FlowerMessage
	err := c.do(ctx, Call{
		Op:     "flower.update",
		Method: http.MethodPut,
		Path:   "/admin/flower-messages/" + strconv.FormatInt(id, 10),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFlowerMessage(ctx context.Context, id int64) error {
	return c.do(ctx, Call{Op: "flower.delete", Method: http.MethodDelete, Path: "/admin/flower-messages/" + strconv.FormatInt(id, 10)}, nil)
}

func (c *Client) DeleteLeafMessage(ctx context.Context, id int64) error {
	return c.do(ctx, Call{Op: "leaf.delete", Method: http.MethodDelete, Path: "/admin/leaf-messages/" + strconv.FormatInt(id, 10)}, nil)
}

// ExportMessages 엑셀 파일을 그대로 받는다. envelope 디코딩을 거치지 않는다.
func (c *Client) ExportMessages(ctx context.Context, cond *model.MessageSearchCondition) (*model.ExportFile, error) {
	q, err := search.Values(cond, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.Request(ctx, Call{
		Op:     "messages.export",
		Method: http.MethodGet,
		Path:   "/admin/messages/excel",
		Query:  q,
		Header: http.Header{"Accept": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, application/octet-stream, */*"}},
	})
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	ct := res.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &model.ExportFile{
		Filename:    exportFilename(res.Header.Get("Content-Disposition"), time.Now()),
		ContentType: ct,
		Data:        res.Body,
	}, nil
}

func exportFilename(disposition string, now time.Time) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := strings.TrimSpace(params["filename"]); name != "" {
				return name
			}
		}
	}
	return "messages_" + now.Format("2006-01-02") + ".xlsx"
}
