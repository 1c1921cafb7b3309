package response

import (
	"net/http"

	"garden-console/internal/util/retcode"

	"github.com/gin-gonic/gin"
)

// Body 콘솔 공통 envelope. 백엔드 envelope 과 같은 모양이다.
type Body struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func JSON(c *gin.Context, status int, body Body) {
	c.JSON(status, body)
}

func Success(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, Body{Success: true, Code: retcode.SUCCESS, Message: "success", Data: data})
}

// Error msg 가 비면 code 의 기본 메시지
func Error(c *gin.Context, status, code int, msg string) {
	ErrorData(c, status, code, msg, nil)
}

func ErrorData(c *gin.Context, status, code int, msg string, data interface{}) {
	if msg == "" {
		msg = retcode.Message(code)
	}
	JSON(c, status, Body{Success: false, Code: code, Message: msg, Data: data})
}

// Abort 미들웨어용: 응답을 쓰고 체인을 멈춘다.
func Abort(c *gin.Context, status, code int, msg string, data interface{}) {
	ErrorData(c, status, code, msg, data)
	c.Abort()
}
