package loyalty

import "time"

// RewardRedemption 一份已兌換的獎勵（只新增，不修改）
type RewardRedemption struct {
	id         RedemptionID
	customerID CustomerID
	rewardID   RewardID
	// operatorID 為零值表示非由操作員執行
	operatorID OperatorID
	redeemedAt time.Time
}

// NewRewardRedemptions 為一次兌換建立 count 筆紀錄，共用同一個兌換時間
func NewRewardRedemptions(
	customerID CustomerID,
	rewardID RewardID,
	operatorID OperatorID,
	count ClaimCount,
	redeemedAt time.Time,
) []*RewardRedemption {
	redemptions := make([]*RewardRedemption, 0, count.Value())
	for i := 0; i < count.Value(); i++ {
		redemptions = append(redemptions, &RewardRedemption{
			id:         NewRedemptionID(),
			customerID: customerID,
			rewardID:   rewardID,
			operatorID: operatorID,
			redeemedAt: redeemedAt,
		})
	}
	return redemptions
}

// ReconstructRewardRedemption 從持久化資料重建
func ReconstructRewardRedemption(
	id RedemptionID,
	customerID CustomerID,
	rewardID RewardID,
	operatorID OperatorID,
	redeemedAt time.Time,
) *RewardRedemption {
	return &RewardRedemption{
		id:         id,
		customerID: customerID,
		rewardID:   rewardID,
		operatorID: operatorID,
		redeemedAt: redeemedAt,
	}
}

func (r *RewardRedemption) ID() RedemptionID       { return r.id }
func (r *RewardRedemption) CustomerID() CustomerID { return r.customerID }
func (r *RewardRedemption) RewardID() RewardID     { return r.rewardID }
func (r *RewardRedemption) OperatorID() OperatorID { return r.operatorID }
func (r *RewardRedemption) RedeemedAt() time.Time  { return r.redeemedAt }

// HasOperator 是否記錄了執行的操作員
func (r *RewardRedemption) HasOperator() bool { return !r.operatorID.IsEmpty() }
