package reward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/saveforperks/src/internal/application/scan"
	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// ===========================
// CreateReward Use Case
// ===========================

// CreateRewardCommand 建立商家的獎勵
//
// 驗證：
// - 操作員身分與所屬商家
// - Type 必須是已知的獎勵類型
// - Name 非空、CostPoints >= 0
// - 商家尚未有獎勵（每個商家一個）
type CreateRewardCommand struct {
	BusinessID string
	OperatorID string
	Name       string
	Type       string
	CostPoints int
	Metadata   map[string]interface{}
}

// CreateRewardResult 建立結果
type CreateRewardResult struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Type       string    `json:"reward_type"`
	CostPoints int       `json:"cost_points"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateRewardUseCase 建立獎勵
//
// 「每個商家一個獎勵」在事務中先查再寫；並發建立時由 business_id 唯一索引保證，
// Repository 將唯一鍵衝突轉為 ErrRewardAlreadyExists。
type CreateRewardUseCase struct {
	gate       *scan.AuthorizationGate
	ownership  *scan.TenantOwnershipValidator
	businesses loyalty.BusinessRepository
	rewards    loyalty.RewardRepository
	txManager  shared.TransactionManager
	clock      func() time.Time
}

// NewCreateRewardUseCase 建立 use case
func NewCreateRewardUseCase(
	operators loyalty.OperatorRepository,
	businesses loyalty.BusinessRepository,
	rewards loyalty.RewardRepository,
	txManager shared.TransactionManager,
	clock func() time.Time,
) *CreateRewardUseCase {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &CreateRewardUseCase{
		gate:       scan.NewAuthorizationGate(operators),
		ownership:  scan.NewTenantOwnershipValidator(rewards),
		businesses: businesses,
		rewards:    rewards,
		txManager:  txManager,
		clock:      clock,
	}
}

// Execute 執行建立
func (uc *CreateRewardUseCase) Execute(ctx context.Context, caller identity.Caller, cmd CreateRewardCommand) (*CreateRewardResult, error) {
	// 1. 授權與租戶
	operator, err := uc.gate.Authorize(ctx, caller, cmd.OperatorID)
	if err != nil {
		return nil, err
	}
	businessID, err := uc.ownership.ValidateOperator(operator, cmd.BusinessID)
	if err != nil {
		return nil, err
	}

	// 2. 商家必須存在
	if _, err := uc.businesses.FindByID(ctx, businessID); err != nil {
		if errors.Is(err, loyalty.ErrBusinessNotFound) {
			return nil, loyalty.ErrBusinessNotFound
		}
		return nil, uc.fail(err)
	}

	// 3. 建立聚合
	kind, err := loyalty.ParseRewardKind(cmd.Type)
	if err != nil {
		return nil, err
	}
	reward, err := loyalty.NewReward(businessID, cmd.Name, kind, cmd.CostPoints, cmd.Metadata, uc.clock())
	if err != nil {
		return nil, err
	}

	// 4. 在事務中檢查唯一性並保存
	err = uc.txManager.InTransaction(ctx, func(txCtx context.Context) error {
		_, err := uc.rewards.FindByBusinessID(txCtx, businessID)
		switch {
		case err == nil:
			return loyalty.ErrRewardAlreadyExists
		case !errors.Is(err, loyalty.ErrRewardNotFound):
			return fmt.Errorf("failed to check existing reward: %w", err)
		}
		if err := uc.rewards.Save(txCtx, reward); err != nil {
			return fmt.Errorf("failed to save reward: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, loyalty.ErrRewardAlreadyExists) {
			return nil, loyalty.ErrRewardAlreadyExists
		}
		return nil, uc.fail(err)
	}

	logger.Info("reward created",
		"reward_id", reward.ID().String(),
		"business_id", businessID.String(),
		"operator_id", operator.ID.String(),
	)

	return &CreateRewardResult{
		ID:         reward.ID().String(),
		BusinessID: businessID.String(),
		Name:       reward.Name(),
		Type:       reward.Kind().Tag(),
		CostPoints: reward.CostPoints().Value(),
		IsActive:   reward.IsActive(),
		CreatedAt:  reward.CreatedAt(),
	}, nil
}

func (uc *CreateRewardUseCase) fail(err error) error {
	logger.Error("create reward failed", "error", err)
	return loyalty.ErrTransactionFailed
}
