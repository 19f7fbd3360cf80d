package loyalty

// Availability 指定餘額下某獎勵的可兌換狀態
type Availability struct {
	RewardAvailable bool
	NumAvailable    int
	// Reward 僅在 RewardAvailable 時非 nil
	Reward *Reward
}

// ComputeAvailability 計算可兌換份數
//
// 掃描回應與餘額查詢共用同一個計算：cost > 0 且餘額 >= cost 時
// 可兌換 floor(balance / cost) 份，否則為 0。
func ComputeAvailability(reward *Reward, balance PointsAmount) Availability {
	if reward == nil {
		return Availability{}
	}
	n := reward.Kind().availableUnits(balance, reward.CostPoints())
	if n <= 0 {
		return Availability{}
	}
	return Availability{
		RewardAvailable: true,
		NumAvailable:    n,
		Reward:          reward,
	}
}
