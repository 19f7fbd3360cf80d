package scan

import (
	"time"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// 操作名稱（指標標籤）
const (
	OperationProcessScan   = "process_scan"
	OperationGetBalance    = "get_balance"
	OperationGetScanEvent  = "get_scan_event"
	OperationGetRedemption = "get_redemption"
)

// OutcomeOK 成功的結果標籤；失敗時使用 ErrorKind
const OutcomeOK = "ok"

// MetricsRecorder 交易引擎的指標
type MetricsRecorder interface {
	ObserveOperation(operation, outcome string, duration time.Duration)
	AddPointsAccrued(points int)
	AddRewardsClaimed(count int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, string, time.Duration) {}
func (noopMetrics) AddPointsAccrued(int) {}
func (noopMetrics) AddRewardsClaimed(int) {}

// outcomeOf 錯誤對應的結果標籤
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if de, ok := loyalty.AsDomainError(err); ok {
		return string(de.Kind)
	}
	return string(loyalty.KindInternal)
}
