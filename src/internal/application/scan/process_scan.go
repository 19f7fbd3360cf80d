package scan

import (
	"context"
	"time"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// ProcessScanUseCase 處理一次掃描：累積點數，並可選擇兌換獎勵
//
// 流程：授權 → 租戶檢查 → 交易驗證 → 變更（單一事務）→ 組合回應。
// 任何一步失敗都直接返回，不會寫入任何資料。
type ProcessScanUseCase struct {
	gate      *AuthorizationGate
	ownership *TenantOwnershipValidator
	validator *TransactionValidator
	mutator   *BalanceRedemptionMutator
	composer  ResponseComposer
	metrics   MetricsRecorder
}

// NewProcessScanUseCase 建立 use case
func NewProcessScanUseCase(
	gate *AuthorizationGate,
	ownership *TenantOwnershipValidator,
	validator *TransactionValidator,
	mutator *BalanceRedemptionMutator,
	metrics MetricsRecorder,
) *ProcessScanUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &ProcessScanUseCase{
		gate:      gate,
		ownership: ownership,
		validator: validator,
		mutator:   mutator,
		metrics:   metrics,
	}
}

// Execute 執行掃描
func (uc *ProcessScanUseCase) Execute(ctx context.Context, caller identity.Caller, cmd ProcessScanCommand) (*ScanResult, error) {
	start := time.Now()
	result, err := uc.execute(ctx, caller, cmd)
	err = toClientError(OperationProcessScan, err)
	uc.metrics.ObserveOperation(OperationProcessScan, outcomeOf(err), time.Since(start))
	return result, err
}

func (uc *ProcessScanUseCase) execute(ctx context.Context, caller identity.Caller, cmd ProcessScanCommand) (*ScanResult, error) {
	operator, err := uc.gate.Authorize(ctx, caller, cmd.OperatorID)
	if err != nil {
		return nil, err
	}

	reward, err := uc.ownership.Validate(ctx, operator, cmd.BusinessID, cmd.RewardID)
	if err != nil {
		return nil, maskRewardLookup(err)
	}

	validated, err := uc.validator.ValidateScan(ctx, ScanInput{
		QRToken:     cmd.QRToken,
		RewardID:    reward.ID(),
		PointsToAdd: cmd.PointsToAdd,
		ClaimCount:  cmd.ClaimCount,
	})
	if err != nil {
		return nil, err
	}

	mutation, err := uc.mutator.Apply(ctx, MutationInput{
		Customer:    validated.Customer,
		Reward:      validated.Reward,
		OperatorID:  operator.ID,
		QRToken:     validated.QRToken,
		PointsToAdd: validated.PointsToAdd,
		ClaimCount:  validated.ClaimCount,
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.AddPointsAccrued(validated.PointsToAdd.Value())
	uc.metrics.AddRewardsClaimed(validated.ClaimCount.Value())

	logger.Info("scan processed",
		"scan_event_id", mutation.ScanEvent.ID().String(),
		"business_id", cmd.BusinessID,
		"operator_id", operator.ID.String(),
		"customer_id", validated.Customer.ID.String(),
		"reward_id", validated.Reward.ID().String(),
		"points_added", validated.PointsToAdd.Value(),
		"claimed", validated.ClaimCount.Value(),
		"balance", mutation.Balance.Balance().Value(),
	)

	return uc.composer.ComposeScanResult(validated.Customer, validated.Reward, mutation, validated.ClaimCount), nil
}
