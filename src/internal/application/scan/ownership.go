package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// TenantOwnershipValidator 確認操作員與獎勵都屬於請求的商家
//
// 先檢查操作員，再檢查獎勵；獎勵不存在與屬於其他商家對外不可區分。
type TenantOwnershipValidator struct {
	rewards loyalty.RewardRepository
}

// NewTenantOwnershipValidator 建立租戶檢查
func NewTenantOwnershipValidator(rewards loyalty.RewardRepository) *TenantOwnershipValidator {
	return &TenantOwnershipValidator{rewards: rewards}
}

// ValidateOperator 操作員必須屬於 businessID
func (v *TenantOwnershipValidator) ValidateOperator(operator *loyalty.BusinessOperator, businessID string) (loyalty.BusinessID, error) {
	id, err := loyalty.BusinessIDFromString(businessID)
	if err != nil || !operator.BelongsTo(id) {
		logger.Warn("tenant check failed: operator does not belong to business",
			"operator_id", operator.ID.String(),
			"business_id", businessID,
		)
		return loyalty.BusinessID{}, loyalty.ErrForbiddenBusiness
	}
	return id, nil
}

// ValidateReward 獎勵必須存在且屬於 businessID
func (v *TenantOwnershipValidator) ValidateReward(ctx context.Context, businessID loyalty.BusinessID, rewardID string) (*loyalty.Reward, error) {
	id, err := loyalty.RewardIDFromString(rewardID)
	if err != nil {
		logger.Warn("tenant check failed: malformed reward id", "reward_id", rewardID, "business_id", businessID.String())
		return nil, loyalty.ErrInvalidReward
	}

	reward, err := v.rewards.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, loyalty.ErrRewardNotFound) {
			logger.Warn("tenant check failed: reward not found", "reward_id", rewardID, "business_id", businessID.String())
			return nil, loyalty.ErrInvalidReward
		}
		return nil, fmt.Errorf("failed to load reward: %w", err)
	}

	if !reward.BelongsTo(businessID) {
		logger.Warn("tenant check failed: reward belongs to another business",
			"reward_id", rewardID,
			"business_id", businessID.String(),
			"owner_business_id", reward.BusinessID().String(),
		)
		return nil, loyalty.ErrInvalidReward
	}

	return reward, nil
}

// Validate 依序執行操作員與獎勵檢查
func (v *TenantOwnershipValidator) Validate(ctx context.Context, operator *loyalty.BusinessOperator, businessID, rewardID string) (*loyalty.Reward, error) {
	bid, err := v.ValidateOperator(operator, businessID)
	if err != nil {
		return nil, err
	}
	return v.ValidateReward(ctx, bid, rewardID)
}
