package scan

import (
	"context"
	"time"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
)

// Dependencies 交易引擎需要的 Repository 與基礎設施
type Dependencies struct {
	Customers   loyalty.CustomerRepository
	Operators   loyalty.OperatorRepository
	Rewards     loyalty.RewardRepository
	Balances    loyalty.BalanceRepository
	ScanEvents  loyalty.ScanEventRepository
	Redemptions loyalty.RedemptionRepository
	TxManager   shared.TransactionManager

	// 以下可為 nil
	Publisher shared.EventPublisher
	Metrics   MetricsRecorder
}

// Options 可調整的行為
type Options struct {
	// MaxAttempts 衝突時最多嘗試的事務次數（含第一次）
	MaxAttempts int
	// RetryBaseDelay 指數退避的起始間隔
	RetryBaseDelay time.Duration
	// Clock 時間來源（測試用）
	Clock func() time.Time
}

// DefaultOptions 預設選項
func DefaultOptions() Options {
	return Options{
		MaxAttempts:    3,
		RetryBaseDelay: 10 * time.Millisecond,
		Clock:          func() time.Time { return time.Now().UTC() },
	}
}

// Service 交易引擎對外的操作集合
type Service struct {
	gate      *AuthorizationGate
	ownership *TenantOwnershipValidator

	processScan   *ProcessScanUseCase
	getBalance    *GetBalanceUseCase
	getScanEvent  *GetScanEventUseCase
	getRedemption *GetRedemptionUseCase
}

// NewService 組裝所有元件
func NewService(deps Dependencies, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = DefaultOptions().Clock
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	gate := NewAuthorizationGate(deps.Operators)
	ownership := NewTenantOwnershipValidator(deps.Rewards)
	validator := NewTransactionValidator(deps.Customers, deps.Rewards, deps.Balances)
	mutator := NewBalanceRedemptionMutator(
		deps.TxManager,
		deps.Balances,
		deps.ScanEvents,
		deps.Redemptions,
		deps.Publisher,
		opts.MaxAttempts,
		opts.RetryBaseDelay,
		opts.Clock,
	)

	return &Service{
		gate:      gate,
		ownership: ownership,

		processScan:   NewProcessScanUseCase(gate, ownership, validator, mutator, metrics),
		getBalance:    NewGetBalanceUseCase(gate, ownership, validator, metrics),
		getScanEvent:  NewGetScanEventUseCase(gate, ownership, deps.ScanEvents, metrics),
		getRedemption: NewGetRedemptionUseCase(gate, ownership, deps.Redemptions, metrics),
	}
}

// AuthorizeOperator 只執行授權與操作員租戶檢查，不讀寫任何交易資料
//
// 冪等重播前呼叫，確保快取的回應只交給有權限的呼叫者。
func (s *Service) AuthorizeOperator(ctx context.Context, caller identity.Caller, businessID, operatorID string) error {
	operator, err := s.gate.Authorize(ctx, caller, operatorID)
	if err != nil {
		return toClientError("authorize_operator", err)
	}
	if _, err := s.ownership.ValidateOperator(operator, businessID); err != nil {
		return toClientError("authorize_operator", err)
	}
	return nil
}

// ProcessScan 處理掃描
func (s *Service) ProcessScan(ctx context.Context, caller identity.Caller, cmd ProcessScanCommand) (*ScanResult, error) {
	return s.processScan.Execute(ctx, caller, cmd)
}

// GetBalance 查詢餘額
func (s *Service) GetBalance(ctx context.Context, caller identity.Caller, q GetBalanceQuery) (*BalanceInfo, error) {
	return s.getBalance.Execute(ctx, caller, q)
}

// GetScanEvent 查詢掃描事件
func (s *Service) GetScanEvent(ctx context.Context, caller identity.Caller, q GetScanEventQuery) (*ScanEventInfo, error) {
	return s.getScanEvent.Execute(ctx, caller, q)
}

// GetRedemption 查詢兌換紀錄
func (s *Service) GetRedemption(ctx context.Context, caller identity.Caller, q GetRedemptionQuery) (*RedemptionInfo, error) {
	return s.getRedemption.Execute(ctx, caller, q)
}
