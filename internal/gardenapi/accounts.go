package gardenapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"garden-console/internal/domain/model"
)

const accountsPath = "/admin/accounts"

func accountPath(idx int64, suffix string) string {
	return accountsPath + "/" + strconv.FormatInt(idx, 10) + suffix
}

func (c *Client) ListAdminAccounts(ctx context.Context) ([]model.AdminAccount, error) {
	var out []model.AdminAccount
	if err := c.do(ctx, Call{Op: "account.list", Method: http.MethodGet, Path: accountsPath}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.AdminAccount{}
	}
	return out, nil
}

func (c *Client) CreateAdminAccount(ctx context.Context, req model.AdminAccountCreateRequest) (*model.AdminAccount, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	var out model.AdminAccount
	if err := c.do(ctx, Call{Op: "account.create", Method: http.MethodPost, Path: accountsPath, Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAdminAccount(ctx context.Context, idx int64, req model.AdminAccountUpdateRequest) (*model.AdminAccount, error) {
	var out model.AdminAccount
	if err := c.do(ctx, Call{Op: "account.update", Method: http.MethodPut, Path: accountPath(idx, ""), Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAdminAccount(ctx context.Context, idx int64) error {
	return c.do(ctx, Call{Op: "account.delete", Method: http.MethodDelete, Path: accountPath(idx, "")}, nil)
}

// ResetAdminPassword 백엔드가 돌려준 data 를 그대로 전달한다 (임시 비밀번호 등).
func (c *Client) ResetAdminPassword(ctx context.Context, idx int64) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, Call{Op: "account.password_reset", Method: http.MethodPost, Path: accountPath(idx, "/password-reset")}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UnlockAdminAccount(ctx context.Context, idx int64) error {
	return c.do(ctx, Call{Op: "account.unlock", Method: http.MethodPut, Path: accountPath(idx, "/unlock")}, nil)
}

func (c *Client) UpdateMyProfile(ctx context.Context, req model.ProfileUpdateRequest) (*model.AdminAccount, error) {
	var out model.AdminAccount
	if err := c.do(ctx, Call{Op: "me.update", Method: http.MethodPut, Path: accountsPath + "/me", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMyPassword 새 비밀번호와 확인 값이 다르면 요청하지 않는다.
func (c *Client) UpdateMyPassword(ctx context.Context, req model.PasswordUpdateRequest) error {
	if req.NewPassword != req.ConfirmNewPassword {
		return ErrPasswordMismatch
	}
	if err := c.validate.Struct(req); err != nil {
		return validationError(err)
	}
	return c.do(ctx, Call{Op: "me.password", Method: http.MethodPut, Path: accountsPath + "/me/password", Body: req}, nil)
}
