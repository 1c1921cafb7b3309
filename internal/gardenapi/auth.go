package gardenapi

import (
	"context"
	"net/http"

	"garden-console/internal/domain/model"
)

// Login 성공 시 백엔드 세션 쿠키가 클라이언트 쿠키 저장소에 남는다.
// 로그인 실패의 401 은 세션 만료가 아니므로 세션 검사를 끈다.
func (c *Client) Login(ctx context.Context, req model.AdminLoginRequest) (*model.AdminLoginResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	var out model.AdminLoginResponse
	err := c.do(ctx, Call{
		Op:               "auth.login",
		Method:           http.MethodPost,
		Path:             "/admin/auth/login",
		Body:             req,
		SkipSessionCheck: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, Call{Op: "auth.logout", Method: http.MethodPost, Path: "/admin/auth/logout"}, nil)
}
