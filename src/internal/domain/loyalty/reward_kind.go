package loyalty

// ===========================
// RewardKind 封閉變體
// ===========================

// RewardKind 獎勵類型
//
// 封閉集合：只有本套件能實作（sealed 方法），新增類型時編譯器會
// 指出所有需要處理的地方。目前只有 IncrementalPoints。
type RewardKind interface {
	// Tag 序列化標籤（儲存於資料庫、回應給呼叫者）
	Tag() string
	// availableUnits 在指定餘額下可兌換的份數
	availableUnits(balance, cost PointsAmount) int
	sealed()
}

// RewardKindIncrementalPointsTag IncrementalPoints 的序列化標籤
const RewardKindIncrementalPointsTag = "incremental_points"

// IncrementalPoints 累積點數、達到 cost 即可兌換一份
type IncrementalPoints struct{}

// Tag 實作 RewardKind
func (IncrementalPoints) Tag() string { return RewardKindIncrementalPointsTag }

func (IncrementalPoints) availableUnits(balance, cost PointsAmount) int {
	if cost.IsZero() || balance.LessThan(cost) {
		return 0
	}
	return balance.DivideBy(cost)
}

func (IncrementalPoints) sealed() {}

// ParseRewardKind 由標籤解析獎勵類型
func ParseRewardKind(tag string) (RewardKind, error) {
	switch tag {
	case RewardKindIncrementalPointsTag:
		return IncrementalPoints{}, nil
	default:
		return nil, ErrInvalidRewardKind.WithContext("type", tag)
	}
}
