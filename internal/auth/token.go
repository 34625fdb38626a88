package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSecretNotSet 未配置签名密钥
var ErrSecretNotSet = errors.New("admin token signing secret not set")

// DefaultTokenTTL 管理员会话有效期
const DefaultTokenTTL = 24 * time.Hour

// AdminClaims 管理员会话载荷
type AdminClaims struct {
	AdminId int64  `json:"adminId"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager 签发与校验管理员 token。无服务端会话表，登出不会使 token 失效。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager 创建 TokenManager
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL token 有效期
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Sign 签发 token
func (m *TokenManager) Sign(adminId int64, email string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrSecretNotSet
	}

	now := m.now()
	claims := AdminClaims{
		AdminId: adminId,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify 校验 token。过期、格式错误、签名不符统一返回 nil
func (m *TokenManager) Verify(token string) *AdminClaims {
	if token == "" || len(m.secret) == 0 {
		return nil
	}

	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil
	}
	return claims
}
