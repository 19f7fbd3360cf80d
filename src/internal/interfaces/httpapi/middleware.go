package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/infrastructure/auth"
)

const (
	callerKey        = "caller"
	headerOperatorID = "X-Operator-Id"
)

// TokenVerifier bearer token → Caller
type TokenVerifier interface {
	Verify(token string) (identity.Caller, error)
}

// Authenticate 驗證 bearer token 並把 Caller 放入 gin context
//
// 沒有 token 或 token 無效時放入匿名 Caller，由授權檢查回應 Unauthorized。
func Authenticate(verifier TokenVerifier, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := identity.Anonymous()
		if token := auth.BearerToken(c.GetHeader("Authorization")); token != "" {
			verified, err := verifier.Verify(token)
			if err != nil {
				log.Debug().Err(err).Str("path", c.FullPath()).Msg("bearer token rejected")
			} else {
				caller = verified
			}
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// callerFrom 取出 Authenticate 放入的 Caller
func callerFrom(c *gin.Context) identity.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(identity.Caller); ok {
			return caller
		}
	}
	return identity.Anonymous()
}

// AccessLog 每個請求一行存取日誌
func AccessLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("operator_id", c.GetHeader(headerOperatorID)).
			Msg("request processed")
	}
}

// RequestTimeout 為請求 context 設定逾時
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
