package console

import (
	"context"
	"net/http"

	"garden-console/internal/domain/model"
	"garden-console/internal/pkg/cache"
	"garden-console/internal/server/http/middleware/security"
	"garden-console/internal/util/retcode"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccountHandler struct{ d Dependencies }

func NewAccountHandler(d Dependencies) *AccountHandler { return &AccountHandler{d: d} }

func (h *AccountHandler) List(c *gin.Context) {
	cl := client(c)
	out, err := cache.Cached(c.Request.Context(), h.d.Lists, nsAccounts, cacheKey(c, nil, nil),
		func(ctx context.Context) ([]model.AdminAccount, error) {
			return cl.ListAdminAccounts(ctx)
		})
	if err != nil {
		h.d.fail(c, err)
		return
	}
	response.Success(c, out)
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req model.AdminAccountCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	acc, err := client(c).CreateAdminAccount(ctx, req)
	if err != nil {
		h.d.fail(c, err)
		return
	}
	h.d.invalidate(ctx, nsAccounts)
	response.JSON(c, http.StatusCreated, response.Body{Success: true, Code: retcode.SUCCESS, Message: "success", Data: acc})
}

func (h *AccountHandler) Update(c *gin.Context) {
	idx, ok := pathInt64(c, "idx")
	if !ok {
		return
	}
	var req model.AdminAccountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	acc, err := client(c).UpdateAdminAccount(ctx, idx, req)
	if err != nil {
		h.d.fail(c, err)
		return
	}
	h.d.invalidate(ctx, nsAccounts)
	response.Success(c, acc)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	idx, ok := pathInt64(c, "idx")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := client(c).DeleteAdminAccount(ctx, idx); err != nil {
		h.d.fail(c, err)
		return
	}
	h.d.invalidate(ctx, nsAccounts)
	response.Success(c, gin.H{"adminIndex": idx})
}

// ResetPassword 백엔드가 돌려준 data 를 그대로 전달한다 (임시 비밀번호 포함 가능)
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	idx, ok := pathInt64(c, "idx")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	raw, err := client(c).ResetAdminPassword(ctx, idx)
	if err != nil {
		h.d.fail(c, err)
		return
	}
	h.d.invalidate(ctx, nsAccounts)
	if len(raw) == 0 {
		response.Success(c, nil)
		return
	}
	response.Success(c, raw)
}

func (h *AccountHandler) Unlock(c *gin.Context) {
	idx, ok := pathInt64(c, "idx")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := client(c).UnlockAdminAccount(ctx, idx); err != nil {
		h.d.fail(c, err)
		return
	}
	h.d.invalidate(ctx, nsAccounts)
	response.Success(c, gin.H{"adminIndex": idx})
}

// UpdateMe 성공하면 세션의 닉네임/연락처도 바꾼다
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	var req model.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	acc, err := client(c).UpdateMyProfile(ctx, req)
	if err != nil {
		h.d.fail(c, err)
		return
	}
	if st := security.Store(c); st != nil {
		err := st.UpdateUser(ctx, func(u *model.AdminAccount) {
			if req.AdminNickName != nil {
				u.AdminNickName = *req.AdminNickName
			}
			if req.AdminPhone != nil {
				u.AdminPhone = req.AdminPhone
			}
		})
		if err != nil {
			h.d.Logger.WithContext(ctx).Warn("console_session_user_update_failed", zap.Error(err))
		}
	}
	h.d.invalidate(ctx, nsAccounts)
	response.Success(c, acc)
}

func (h *AccountHandler) UpdateMyPassword(c *gin.Context) {
	var req model.PasswordUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := client(c).UpdateMyPassword(c.Request.Context(), req); err != nil {
		h.d.fail(c, err)
		return
	}
	response.Success(c, nil)
}
