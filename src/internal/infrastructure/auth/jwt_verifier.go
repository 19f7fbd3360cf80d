package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
)

// ErrInvalidToken bearer token 無法驗證（簽章、過期、issuer/audience 不符、缺少 sub）
var ErrInvalidToken = errors.New("invalid bearer token")

// Config 驗證設定；Secret（HS256）與 PublicKeyPEM（RS256）至少一個
type Config struct {
	Secret       string
	PublicKeyPEM string
	Issuer       string
	Audience     string
	Leeway       time.Duration
}

// Claims 外部身分提供者簽發的 token 內容
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier 驗證 bearer token 並轉成 identity.Caller
type Verifier struct {
	parser *jwt.Parser
	hmac   []byte
	rsa    *rsa.PublicKey
}

// NewVerifier 建立 Verifier
// 同時設定兩種金鑰時，兩種演算法都接受
func NewVerifier(cfg Config) (*Verifier, error) {
	v := &Verifier{}
	var methods []string

	if cfg.Secret != "" {
		v.hmac = []byte(cfg.Secret)
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if strings.TrimSpace(cfg.PublicKeyPEM) != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		v.rsa = key
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}
	if len(methods) == 0 {
		return nil, errors.New("a JWT secret or RSA public key is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	v.parser = jwt.NewParser(opts...)

	return v, nil
}

// Verify 驗證 token 字串（不含 "Bearer " 前綴）
func (v *Verifier) Verify(raw string) (identity.Caller, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(raw, claims, v.keyFor)
	if err != nil {
		return identity.Anonymous(), fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return identity.Anonymous(), ErrInvalidToken
	}

	caller := identity.NewCaller(claims.Subject, claims.Email)
	if !caller.IsAuthenticated() {
		return identity.Anonymous(), fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	return caller, nil
}

func (v *Verifier) keyFor(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.hmac != nil {
			return v.hmac, nil
		}
	case *jwt.SigningMethodRSA:
		if v.rsa != nil {
			return v.rsa, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
}

// BearerToken 從 Authorization header 取出 token；格式不符時返回空字串
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
