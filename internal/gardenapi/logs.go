package gardenapi

import (
	"context"
	"net/http"

	"garden-console/internal/domain/model"
	"garden-console/internal/search"
)

func (c *Client) ListLoginHistory(ctx context.Context, cond *model.LogSearchCondition, page model.Pageable) (*model.PageResponse[model.AdminLoginHistory], error) {
	if cond != nil && cond.ActType != nil {
		// 로그인 이력에는 활동 유형 조건이 없다
		cp := *cond
		cp.ActType = nil
		cond = &cp
	}
	q, err := search.Values(cond, &page)
	if err != nil {
		return nil, err
	}
	var out model.PageResponse[model.AdminLoginHistory]
	if err := c.do(ctx, Call{Op: "log.logins", Method: http.MethodGet, Path: "/admin/logs/logins", Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListActivityHistory(ctx context.Context, cond *model.LogSearchCondition, page model.Pageable) (*model.PageResponse[model.AdminActivityHistory], error) {
	q, err := search.Values(cond, &page)
	if err != nil {
		return nil, err
	}
	var out model.PageResponse[model.AdminActivityHistory]
	if err := c.do(ctx, Call{Op: "log.activities", Method: http.MethodGet, Path: "/admin/logs/activities", Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
