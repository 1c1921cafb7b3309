package console

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"
	"garden-console/internal/search"
	"garden-console/internal/server/http/middleware/security"
	"garden-console/internal/util/retcode"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 목록 캐시 네임스페이스
const (
	nsFlowers    = "flower-messages"
	nsLeaves     = "leaf-messages"
	nsAccounts   = "accounts"
	nsLogins     = "logs-logins"
	nsActivities = "logs-activities"
)

type pageQuery struct {
	Page int      `form:"page"`
	Size int      `form:"size"`
	Sort []string `form:"sort"`
}

func bindPage(c *gin.Context) (model.Pageable, bool) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return model.Pageable{}, false
	}
	return search.NormalizePage(model.Pageable{Page: q.Page, Size: q.Size, Sort: q.Sort}), true
}

// listPage 요청 페이지를 정한다. 이 세션에서 ns 의 검색 조건이 바뀌었으면 0 페이지로 돌아간다.
func (d Dependencies) listPage(c *gin.Context, ns string, cond interface{}) (model.Pageable, bool) {
	page, ok := bindPage(c)
	if !ok {
		return page, false
	}
	st := security.Store(c)
	if st == nil {
		return page, true
	}
	next, fp, err := search.ResumePage(st.LastFilter(ns), cond, page)
	if err != nil {
		badRequest(c, err)
		return page, false
	}
	if err := st.SetFilter(c.Request.Context(), ns, fp); err != nil {
		d.Logger.WithContext(c.Request.Context()).Warn("console_session_filter_save_failed", zap.String("ns", ns), zap.Error(err))
	}
	return next, true
}

func pathInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		response.Error(c, http.StatusBadRequest, retcode.PARAM_INVALID, name+" 값이 올바르지 않습니다")
		return 0, false
	}
	return v, true
}

// cacheKey 콘솔 세션 id + 조건 + 페이지의 정규화된 쿼리스트링 (키 정렬됨).
// 세션마다 따로 캐시하므로 백엔드 세션 만료는 늦어도 목록 캐시 TTL 안에 드러난다.
func cacheKey(c *gin.Context, cond interface{}, page *model.Pageable) string {
	vals, err := search.Values(cond, page)
	if err != nil {
		return ""
	}
	return security.SessionID(c) + "|" + vals.Encode()
}

func (d Dependencies) invalidate(ctx context.Context, namespaces ...string) {
	for _, ns := range namespaces {
		if err := d.Lists.Invalidate(ctx, ns); err != nil {
			d.Logger.WithContext(ctx).Warn("list_cache_invalidate_failed", zap.String("ns", ns), zap.Error(err))
		}
	}
}

// fail 백엔드 호출 오류를 콘솔 응답으로 바꾼다.
//   - 세션 만료: 로컬 세션을 지우고 401 + 로그인 이동 힌트
//   - ApiError: 같은 상태 코드와 백엔드 메시지
//   - 입력 검증 오류: 400
//   - 그 외(전송 실패): 502
func (d Dependencies) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	lg := d.Logger.WithContext(ctx)
	switch {
	case gardenapi.IsSessionExpired(err):
		_ = d.Sessions.Destroy(ctx, security.Store(c))
		d.Auth.ClearCookie(c)
		lg.Info("upstream_session_expired", zap.String("path", c.FullPath()))
		response.ErrorData(c, http.StatusUnauthorized, retcode.SESSION_TIMEOUT, "", security.LoginRedirect)
	case errors.Is(err, gardenapi.ErrContentEmpty), errors.Is(err, gardenapi.ErrContentTooLong), errors.Is(err, gardenapi.ErrPasswordMismatch):
		response.Error(c, http.StatusBadRequest, retcode.PARAM_INVALID, err.Error())
	default:
		if apiErr, ok := gardenapi.AsApiError(err); ok {
			code := apiErr.Code
			if code == 0 {
				code = retcode.INVALID
			}
			status := apiErr.Status
			switch {
			case status == http.StatusUnauthorized:
				// 세션 만료가 아닌 401 은 403 으로 내린다
				status = http.StatusForbidden
			case status < 400:
				status = http.StatusBadRequest
			}
			response.Error(c, status, code, apiErr.Message)
			return
		}
		lg.Warn("upstream_call_failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusBadGateway, retcode.UPSTREAM_ERROR, "")
	}
}

// badRequest 바인딩/검증 실패
func badRequest(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, retcode.PARAM_INVALID, err.Error())
}

func client(c *gin.Context) *gardenapi.Client { return security.Client(c) }
