package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// GetScanEventUseCase 查詢某獎勵下的單筆掃描事件
type GetScanEventUseCase struct {
	gate      *AuthorizationGate
	ownership *TenantOwnershipValidator
	scans     loyalty.ScanEventRepository
	metrics   MetricsRecorder
}

// NewGetScanEventUseCase 建立 use case
func NewGetScanEventUseCase(
	gate *AuthorizationGate,
	ownership *TenantOwnershipValidator,
	scans loyalty.ScanEventRepository,
	metrics MetricsRecorder,
) *GetScanEventUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &GetScanEventUseCase{
		gate:      gate,
		ownership: ownership,
		scans:     scans,
		metrics:   metrics,
	}
}

// Execute 查詢掃描事件；不存在或不屬於該獎勵時返回 ErrScanEventNotFound
func (uc *GetScanEventUseCase) Execute(ctx context.Context, caller identity.Caller, q GetScanEventQuery) (*ScanEventInfo, error) {
	start := time.Now()
	info, err := uc.execute(ctx, caller, q)
	err = toClientError(OperationGetScanEvent, err)
	uc.metrics.ObserveOperation(OperationGetScanEvent, outcomeOf(err), time.Since(start))
	return info, err
}

func (uc *GetScanEventUseCase) execute(ctx context.Context, caller identity.Caller, q GetScanEventQuery) (*ScanEventInfo, error) {
	operator, err := uc.gate.Authorize(ctx, caller, q.OperatorID)
	if err != nil {
		return nil, err
	}

	reward, err := uc.ownership.Validate(ctx, operator, q.BusinessID, q.RewardID)
	if err != nil {
		return nil, err
	}

	id, err := loyalty.ScanEventIDFromString(q.ScanEventID)
	if err != nil {
		return nil, loyalty.ErrScanEventNotFound
	}

	event, err := uc.scans.FindByRewardAndID(ctx, reward.ID(), id)
	if err != nil {
		if errors.Is(err, loyalty.ErrScanEventNotFound) {
			return nil, loyalty.ErrScanEventNotFound
		}
		return nil, fmt.Errorf("failed to load scan event: %w", err)
	}

	info := toScanEventInfo(event)
	return &info, nil
}
