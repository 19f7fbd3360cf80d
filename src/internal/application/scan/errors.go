package scan

import (
	"errors"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// toClientError 非對外錯誤（持久化、取消等）一律轉為 ErrTransactionFailed
func toClientError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if de, ok := loyalty.AsDomainError(err); ok && de.Kind.IsClientFacing() {
		return err
	}
	logger.Error("request failed", "operation", operation, "error", err)
	return loyalty.ErrTransactionFailed
}

// maskRewardLookup 帶 QR code 的請求中，獎勵檢查失敗與顧客查無資料回應相同錯誤
func maskRewardLookup(err error) error {
	if errors.Is(err, loyalty.ErrInvalidReward) {
		return loyalty.ErrInvalidQROrReward
	}
	return err
}
