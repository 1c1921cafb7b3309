package retcode

// 콘솔 응답 envelope 의 code. 백엔드가 code 를 주면 그대로 전달하고, 콘솔 자체 오류만 아래 값을 쓴다.
const (
	SUCCESS         = 1
	INVALID         = -1
	LOGIN_ERROR     = -7
	NOT_EXISTS      = -8
	JSON_PARSE_FAIL = -9
	EMPTY_PARAMS    = -12
	AUTH_ERROR      = -14
	RATE_LIMITED    = -15
	UPSTREAM_ERROR  = -18
	PARAM_INVALID   = -995
	NOT_LOGIN       = -996
	SESSION_TIMEOUT = -997
	UNKNOWN         = -998
	EXCEPTION       = -999
)

type CodeInfo struct {
	Code    int
	Message string
}

var messages = map[int]string{
	SUCCESS:         "요청 성공",
	INVALID:         "처리할 수 없는 요청",
	LOGIN_ERROR:     "로그인 실패",
	NOT_EXISTS:      "존재하지 않음",
	JSON_PARSE_FAIL: "JSON 형식 오류",
	EMPTY_PARAMS:    "필수 값 누락",
	AUTH_ERROR:      "권한이 없습니다",
	RATE_LIMITED:    "요청이 너무 많습니다",
	UPSTREAM_ERROR:  "백엔드 연결 실패",
	PARAM_INVALID:   "잘못된 입력 값",
	NOT_LOGIN:       "로그인이 필요합니다",
	SESSION_TIMEOUT: "세션이 만료되었습니다",
	UNKNOWN:         "알 수 없는 오류",
	EXCEPTION:       "시스템 오류",
}

// Message 코드 기본 메시지. 모르는 코드는 UNKNOWN 메시지.
func Message(code int) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[UNKNOWN]
}

func All() map[string]CodeInfo {
	names := map[string]int{
		"SUCCESS": SUCCESS, "INVALID": INVALID, "LOGIN_ERROR": LOGIN_ERROR, "NOT_EXISTS": NOT_EXISTS,
		"JSON_PARSE_FAIL": JSON_PARSE_FAIL, "EMPTY_PARAMS": EMPTY_PARAMS, "AUTH_ERROR": AUTH_ERROR,
		"RATE_LIMITED": RATE_LIMITED, "UPSTREAM_ERROR": UPSTREAM_ERROR, "PARAM_INVALID": PARAM_INVALID,
		"NOT_LOGIN": NOT_LOGIN, "SESSION_TIMEOUT": SESSION_TIMEOUT, "UNKNOWN": UNKNOWN, "EXCEPTION": EXCEPTION,
	}
	out := make(map[string]CodeInfo, len(names))
	for name, code := range names {
		out[name] = CodeInfo{Code: code, Message: messages[code]}
	}
	return out
}
