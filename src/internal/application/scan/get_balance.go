package scan

import (
	"context"
	"time"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
)

// GetBalanceUseCase 以 QR code 查詢顧客餘額與可兌換份數（唯讀）
type GetBalanceUseCase struct {
	gate      *AuthorizationGate
	ownership *TenantOwnershipValidator
	validator *TransactionValidator
	composer  ResponseComposer
	metrics   MetricsRecorder
}

// NewGetBalanceUseCase 建立 use case
func NewGetBalanceUseCase(
	gate *AuthorizationGate,
	ownership *TenantOwnershipValidator,
	validator *TransactionValidator,
	metrics MetricsRecorder,
) *GetBalanceUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &GetBalanceUseCase{
		gate:      gate,
		ownership: ownership,
		validator: validator,
		metrics:   metrics,
	}
}

// Execute 查詢餘額；尚無紀錄時餘額為 0
func (uc *GetBalanceUseCase) Execute(ctx context.Context, caller identity.Caller, q GetBalanceQuery) (*BalanceInfo, error) {
	start := time.Now()
	info, err := uc.execute(ctx, caller, q)
	err = toClientError(OperationGetBalance, err)
	uc.metrics.ObserveOperation(OperationGetBalance, outcomeOf(err), time.Since(start))
	return info, err
}

func (uc *GetBalanceUseCase) execute(ctx context.Context, caller identity.Caller, q GetBalanceQuery) (*BalanceInfo, error) {
	operator, err := uc.gate.Authorize(ctx, caller, q.OperatorID)
	if err != nil {
		return nil, err
	}

	reward, err := uc.ownership.Validate(ctx, operator, q.BusinessID, q.RewardID)
	if err != nil {
		return nil, maskRewardLookup(err)
	}

	customer, reward, token, err := uc.validator.Resolve(ctx, q.QRToken, reward.ID())
	if err != nil {
		return nil, err
	}

	balance, err := uc.validator.LoadBalance(ctx, customer.ID, reward.ID())
	if err != nil {
		return nil, err
	}

	return uc.composer.ComposeBalanceInfo(customer, reward, token, balance), nil
}
