package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// ErrorResponse 錯誤回應；DomainError.Context 不會輸出
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

var (
	errMalformedBody = &loyalty.DomainError{
		Code:    "MALFORMED_BODY",
		Kind:    loyalty.KindInvalidRequest,
		Message: "Malformed request body",
	}

	errIdempotencyInProgress = &loyalty.DomainError{
		Code:    "IDEMPOTENCY_IN_PROGRESS",
		Kind:    loyalty.KindConflict,
		Message: "A request with this Idempotency-Key is still being processed",
	}

	errIdempotencyKeyReused = &loyalty.DomainError{
		Code:    "IDEMPOTENCY_KEY_REUSED",
		Kind:    loyalty.KindInvalidRequest,
		Message: "Idempotency-Key was already used with a different request body",
	}

	errIdempotencyUnavailable = &loyalty.DomainError{
		Code:    "IDEMPOTENCY_UNAVAILABLE",
		Kind:    loyalty.KindInternal,
		Message: "Idempotency store is unavailable",
	}
)

// statusFor 錯誤類別對應的 HTTP 狀態碼
func statusFor(kind loyalty.ErrorKind) int {
	switch kind {
	case loyalty.KindUnauthorized:
		return http.StatusUnauthorized
	case loyalty.KindForbidden,
		loyalty.KindInvalidRequest,
		loyalty.KindValidation,
		loyalty.KindInsufficientPoints:
		return http.StatusBadRequest
	case loyalty.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError 把錯誤寫成 JSON 回應
// 非對外的錯誤一律回應 ErrTransactionFailed
func writeError(c *gin.Context, err error) {
	de, ok := loyalty.AsDomainError(err)
	if !ok || !de.Kind.IsClientFacing() {
		logger.Error("unhandled request error", "path", c.FullPath(), "error", err)
		de = loyalty.ErrTransactionFailed
	}
	respondError(c, statusFor(de.Kind), de)
}

func respondError(c *gin.Context, status int, de *loyalty.DomainError) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    string(de.Code),
		Message: de.Message,
	})
}
