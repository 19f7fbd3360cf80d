package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// GetRedemptionUseCase 查詢某獎勵下的單筆兌換紀錄
type GetRedemptionUseCase struct {
	gate        *AuthorizationGate
	ownership   *TenantOwnershipValidator
	redemptions loyalty.RedemptionRepository
	metrics     MetricsRecorder
}

// NewGetRedemptionUseCase 建立 use case
func NewGetRedemptionUseCase(
	gate *AuthorizationGate,
	ownership *TenantOwnershipValidator,
	redemptions loyalty.RedemptionRepository,
	metrics MetricsRecorder,
) *GetRedemptionUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &GetRedemptionUseCase{
		gate:        gate,
		ownership:   ownership,
		redemptions: redemptions,
		metrics:     metrics,
	}
}

// Execute 查詢兌換紀錄
func (uc *GetRedemptionUseCase) Execute(ctx context.Context, caller identity.Caller, q GetRedemptionQuery) (*RedemptionInfo, error) {
	start := time.Now()
	info, err := uc.execute(ctx, caller, q)
	err = toClientError(OperationGetRedemption, err)
	uc.metrics.ObserveOperation(OperationGetRedemption, outcomeOf(err), time.Since(start))
	return info, err
}

func (uc *GetRedemptionUseCase) execute(ctx context.Context, caller identity.Caller, q GetRedemptionQuery) (*RedemptionInfo, error) {
	operator, err := uc.gate.Authorize(ctx, caller, q.OperatorID)
	if err != nil {
		return nil, err
	}

	reward, err := uc.ownership.Validate(ctx, operator, q.BusinessID, q.RewardID)
	if err != nil {
		return nil, err
	}

	id, err := loyalty.RedemptionIDFromString(q.RedemptionID)
	if err != nil {
		return nil, loyalty.ErrRedemptionNotFound
	}

	redemption, err := uc.redemptions.FindByRewardAndID(ctx, reward.ID(), id)
	if err != nil {
		if errors.Is(err, loyalty.ErrRedemptionNotFound) {
			return nil, loyalty.ErrRedemptionNotFound
		}
		return nil, fmt.Errorf("failed to load redemption: %w", err)
	}

	return toRedemptionInfo(redemption), nil
}
