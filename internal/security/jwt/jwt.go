package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Manager 콘솔 토큰. 토큰은 세션 id 만 싣고 사용자 정보는 세션 저장소에서 읽는다.
type Manager struct {
	secret []byte
	expire time.Duration
	issuer string
}

type Claims struct {
	SessionID string `json:"sid"`
	AdminID   string `json:"adm"`
	jwtlib.RegisteredClaims
}

func NewManager(secret string, expireSeconds int, issuer string) *Manager {
	return &Manager{secret: []byte(secret), expire: time.Duration(expireSeconds) * time.Second, issuer: issuer}
}

func (m *Manager) Generate(sid, adminID string) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sid,
		AdminID:   adminID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   adminID,
			ID:        sid,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.expire)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	opts := []jwtlib.ParserOption{jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(m.issuer))
	}
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	return claims, nil
}

// IsExpired 만료된 토큰인지 (세션 만료 응답 구분용)
func IsExpired(err error) bool { return errors.Is(err, jwtlib.ErrTokenExpired) }

func (m *Manager) ExpireDuration() time.Duration { return m.expire }
