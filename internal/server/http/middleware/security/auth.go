package security

import (
	"net/http"

	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"
	"garden-console/internal/logging"
	"garden-console/internal/security/jwt"
	"garden-console/internal/session"
	"garden-console/internal/util/retcode"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxStore  = "console_store"
	ctxClient = "console_client"
	ctxSID    = "console_sid"
)

// LoginRedirect 세션이 없거나 만료됐을 때 응답 data
var LoginRedirect = gin.H{"redirect": "/login"}

// Authenticator 콘솔 토큰 쿠키 → 세션 → 세션 전용 백엔드 클라이언트
type Authenticator struct {
	JWT        *jwt.Manager
	Sessions   *session.Manager
	Upstream   *gardenapi.Client
	CookieName string
	Logger     *logging.Logger
}

// Auth 세션이 필요한 라우트. 없으면 401.
func (a *Authenticator) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := a.resolve(c)
		if !ok {
			a.ClearCookie(c)
			response.Abort(c, http.StatusUnauthorized, code, "", LoginRedirect)
			return
		}
		c.Next()
		a.persistCookies(c)
	}
}

// Optional 세션이 있으면 채우고 없으면 그냥 통과 (로그아웃 등)
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.resolve(c); !ok {
			c.Next()
			return
		}
		c.Next()
		a.persistCookies(c)
	}
}

func (a *Authenticator) resolve(c *gin.Context) (int, bool) {
	token, err := c.Cookie(a.CookieName)
	if err != nil || token == "" {
		return retcode.NOT_LOGIN, false
	}
	claims, err := a.JWT.Parse(token)
	if err != nil {
		if jwt.IsExpired(err) {
			return retcode.SESSION_TIMEOUT, false
		}
		return retcode.NOT_LOGIN, false
	}
	ctx := c.Request.Context()
	st, ok := a.Sessions.Open(ctx, claims.SessionID)
	if !ok {
		return retcode.SESSION_TIMEOUT, false
	}
	rec, _ := st.Record()
	client := a.Upstream.ForSession(rec.HTTPCookies())
	c.Set(ctxStore, st)
	c.Set(ctxClient, client)
	c.Set(ctxSID, claims.SessionID)
	c.Request = c.Request.WithContext(logging.WithAdminID(ctx, rec.User.AdminID))
	return retcode.SUCCESS, true
}

// persistCookies 백엔드가 쿠키를 갱신했으면 세션 레코드에 반영한다
func (a *Authenticator) persistCookies(c *gin.Context) {
	st := Store(c)
	client := Client(c)
	if st == nil || client == nil || !st.IsAuthenticated() {
		return
	}
	if err := st.SetCookies(c.Request.Context(), session.CookiesFrom(client.Cookies())); err != nil {
		a.Logger.WithContext(c.Request.Context()).Warn("console_session_cookie_save_failed", zap.Error(err))
	}
}

// IssueCookie 로그인 성공 시 콘솔 토큰을 내려준다
func (a *Authenticator) IssueCookie(c *gin.Context, sid, adminID string, secure bool) error {
	token, err := a.JWT.Generate(sid, adminID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.CookieName, token, int(a.JWT.ExpireDuration().Seconds()), "/", "", secure, true)
	return nil
}

func (a *Authenticator) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.CookieName, "", -1, "/", "", false, true)
}

func Store(c *gin.Context) *session.Store {
	v, ok := c.Get(ctxStore)
	if !ok {
		return nil
	}
	st, _ := v.(*session.Store)
	return st
}

func Client(c *gin.Context) *gardenapi.Client {
	v, ok := c.Get(ctxClient)
	if !ok {
		return nil
	}
	cl, _ := v.(*gardenapi.Client)
	return cl
}

// CurrentUser 비인증이면 nil
func CurrentUser(c *gin.Context) *model.AdminAccount {
	st := Store(c)
	if st == nil {
		return nil
	}
	u, _ := st.Current()
	return u
}

func SessionID(c *gin.Context) string { return c.GetString(ctxSID) }
