package scan

import (
	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// ResponseComposer 組合對外回應（含可兌換資訊）
type ResponseComposer struct{}

// ComposeScanResult 掃描結果
func (ResponseComposer) ComposeScanResult(customer *loyalty.Customer, reward *loyalty.Reward, m *MutationResult, count loyalty.ClaimCount) *ScanResult {
	balance := m.Balance.Balance()
	availability := loyalty.ComputeAvailability(reward, balance)

	result := &ScanResult{
		ScanEvent:           toScanEventInfo(m.ScanEvent),
		CustomerName:        customer.DisplayName(),
		CurrentBalance:      balance.Value(),
		RewardAvailable:     availability.RewardAvailable,
		AvailableReward:     toRewardInfo(availability),
		NumRewardsAvailable: availability.NumAvailable,
	}

	if !count.IsZero() {
		ids := make([]string, 0, len(m.Redemptions))
		for _, r := range m.Redemptions {
			ids = append(ids, r.ID().String())
		}
		result.ClaimedRewards = &ClaimedRewardsInfo{
			NumberClaimed:       count.Value(),
			RewardName:          reward.Name(),
			TotalPointsDeducted: m.Deducted.Value(),
			RedemptionIDs:       ids,
		}
	}

	return result
}

// ComposeBalanceInfo 餘額查詢結果；balance 為 nil 時餘額為 0
func (ResponseComposer) ComposeBalanceInfo(customer *loyalty.Customer, reward *loyalty.Reward, token loyalty.QRToken, balance *loyalty.CustomerBalance) *BalanceInfo {
	points := loyalty.ZeroPoints()
	if balance != nil {
		points = balance.Balance()
	}
	availability := loyalty.ComputeAvailability(reward, points)

	return &BalanceInfo{
		QRToken:             token.String(),
		CustomerName:        customer.DisplayName(),
		CurrentBalance:      points.Value(),
		RewardAvailable:     availability.RewardAvailable,
		AvailableReward:     toRewardInfo(availability),
		NumRewardsAvailable: availability.NumAvailable,
	}
}

func toRewardInfo(a loyalty.Availability) *RewardInfo {
	if !a.RewardAvailable {
		return nil
	}
	return &RewardInfo{
		ID:             a.Reward.ID().String(),
		Name:           a.Reward.Name(),
		Type:           a.Reward.Kind().Tag(),
		RequiredPoints: a.Reward.CostPoints().Value(),
	}
}

func toScanEventInfo(e *loyalty.ScanEvent) ScanEventInfo {
	return ScanEventInfo{
		ID:           e.ID().String(),
		CustomerID:   e.CustomerID().String(),
		RewardID:     e.RewardID().String(),
		OperatorID:   e.OperatorID().String(),
		QRToken:      e.QRToken().String(),
		PointsChange: e.PointsChange(),
		ScannedAt:    e.ScannedAt(),
	}
}

func toRedemptionInfo(r *loyalty.RewardRedemption) *RedemptionInfo {
	info := &RedemptionInfo{
		ID:         r.ID().String(),
		CustomerID: r.CustomerID().String(),
		RewardID:   r.RewardID().String(),
		RedeemedAt: r.RedeemedAt(),
	}
	if r.HasOperator() {
		info.OperatorID = r.OperatorID().String()
	}
	return info
}
