package loyalty

import (
	"math"
	"strings"
	"time"
)

// MaxRewardCost 獎勵成本上限（對應資料庫 INTEGER 欄位）
// 上限保證 cost × MaxClaimsPerScan 不會溢位
const MaxRewardCost = math.MaxInt32

// newRewardCost 驗證成本為 0..MaxRewardCost
func newRewardCost(costPoints int) (PointsAmount, error) {
	if costPoints > MaxRewardCost {
		return PointsAmount{}, ErrInvalidRewardCost
	}
	return NewPointsAmount(costPoints)
}

// Reward 商家提供的獎勵（每個商家一個）
type Reward struct {
	id         RewardID
	businessID BusinessID
	name       string
	kind       RewardKind
	costPoints PointsAmount
	isActive   bool
	createdAt  time.Time
	metadata   map[string]interface{}
}

// NewReward 建立新獎勵
// 「每個商家只有一個獎勵」由建立獎勵的 use case 檢查
func NewReward(
	businessID BusinessID,
	name string,
	kind RewardKind,
	costPoints int,
	metadata map[string]interface{},
	now time.Time,
) (*Reward, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRewardName
	}
	if kind == nil {
		return nil, ErrInvalidRewardKind
	}
	cost, err := newRewardCost(costPoints)
	if err != nil {
		return nil, ErrInvalidRewardCost.WithContext("cost_points", costPoints)
	}

	return &Reward{
		id:         NewRewardID(),
		businessID: businessID,
		name:       name,
		kind:       kind,
		costPoints: cost,
		isActive:   true,
		createdAt:  now,
		metadata:   metadata,
	}, nil
}

// ReconstructReward 從持久化資料重建（不產生事件、不檢查業務規則以外的欄位）
func ReconstructReward(
	id RewardID,
	businessID BusinessID,
	name string,
	kind RewardKind,
	costPoints int,
	isActive bool,
	createdAt time.Time,
	metadata map[string]interface{},
) (*Reward, error) {
	cost, err := newRewardCost(costPoints)
	if err != nil {
		return nil, ErrInvalidRewardCost.WithContext("reward_id", id.String(), "cost_points", costPoints)
	}
	if kind == nil {
		return nil, ErrInvalidRewardKind.WithContext("reward_id", id.String())
	}
	return &Reward{
		id:         id,
		businessID: businessID,
		name:       name,
		kind:       kind,
		costPoints: cost,
		isActive:   isActive,
		createdAt:  createdAt,
		metadata:   metadata,
	}, nil
}

func (r *Reward) ID() RewardID                     { return r.id }
func (r *Reward) BusinessID() BusinessID           { return r.businessID }
func (r *Reward) Name() string                     { return r.name }
func (r *Reward) Kind() RewardKind                 { return r.kind }
func (r *Reward) CostPoints() PointsAmount         { return r.costPoints }
func (r *Reward) IsActive() bool                   { return r.isActive }
func (r *Reward) CreatedAt() time.Time             { return r.createdAt }
func (r *Reward) Metadata() map[string]interface{} { return r.metadata }

// BelongsTo 獎勵是否屬於指定商家
func (r *Reward) BelongsTo(businessID BusinessID) bool {
	return r.businessID.Equals(businessID)
}

// CostFor 兌換 count 份所需點數
func (r *Reward) CostFor(count ClaimCount) PointsAmount {
	return r.costPoints.Times(count)
}
