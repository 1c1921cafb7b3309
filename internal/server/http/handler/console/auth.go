package console

import (
	"net/http"

	"garden-console/internal/authz"
	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"
	"garden-console/internal/server/http/middleware/security"
	"garden-console/internal/session"
	"garden-console/internal/util/retcode"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct{ d Dependencies }

func NewAuthHandler(d Dependencies) *AuthHandler { return &AuthHandler{d: d} }

// meView 화면이 쓰는 현재 사용자 정보
type meView struct {
	User         *model.AdminAccount       `json:"user"`
	GradeName    string                    `json:"gradeName"`
	Capabilities map[authz.Capability]bool `json:"capabilities"`
	Navigation   []authz.NavItem           `json:"navigation"`
}

func newMeView(u *model.AdminAccount) meView {
	v := meView{User: u, Capabilities: authz.Capabilities(u), Navigation: authz.Navigation(u)}
	if u != nil {
		v.GradeName = authz.GradeName(u.AdminGrade)
	}
	return v
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, retcode.JSON_PARSE_FAIL, "")
		return
	}
	ctx := c.Request.Context()
	cl := h.d.Upstream.ForSession(nil)
	res, err := cl.Login(ctx, req)
	if err != nil {
		if apiErr, ok := gardenapi.AsApiError(err); ok && apiErr.Code == 0 {
			status := apiErr.Status
			if status < 400 {
				status = http.StatusUnauthorized
			}
			response.Error(c, status, retcode.LOGIN_ERROR, apiErr.Message)
			return
		}
		h.d.fail(c, err)
		return
	}
	rec := session.Record{User: res.Account(), Cookies: session.CookiesFrom(cl.Cookies()), LoginAt: h.d.now()}
	sid, _, err := h.d.Sessions.Create(ctx, rec)
	if err != nil {
		h.d.Logger.WithContext(ctx).Error("console_session_create_failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, retcode.EXCEPTION, "")
		return
	}
	if err := h.d.Auth.IssueCookie(c, sid, rec.User.AdminID, h.d.CookieSecure); err != nil {
		h.d.Logger.WithContext(ctx).Error("console_token_issue_failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, retcode.EXCEPTION, "")
		return
	}
	h.d.Logger.WithContext(ctx).Info("console_login", zap.String("admin_id", rec.User.AdminID), zap.Int("grade", int(rec.User.AdminGrade)))
	response.Success(c, newMeView(&rec.User))
}

// Logout 백엔드 로그아웃이 실패해도 로컬 세션은 항상 지운다
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if cl := client(c); cl != nil {
		if err := cl.Logout(ctx); err != nil {
			h.d.Logger.WithContext(ctx).Warn("upstream_logout_failed", zap.Error(err))
		}
	}
	if st := security.Store(c); st != nil {
		_ = h.d.Sessions.Destroy(ctx, st)
	}
	h.d.Auth.ClearCookie(c)
	response.Success(c, gin.H{"redirect": "/login"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, newMeView(security.CurrentUser(c)))
}

func (h *AuthHandler) Nav(c *gin.Context) {
	response.Success(c, authz.Navigation(security.CurrentUser(c)))
}
