package scan

import "time"

// ===========================
// 輸入
// ===========================

// ProcessScanCommand 處理一次掃描
//
// 識別符為 UUID 字串；PointsToAdd 一般為 1..10，純兌換（ClaimCount > 0）時可為 0；
// ClaimCount 為 0..100。
type ProcessScanCommand struct {
	BusinessID  string
	OperatorID  string
	QRToken     string
	RewardID    string
	PointsToAdd int
	ClaimCount  int
}

// GetBalanceQuery 以 QR code 查詢顧客在某獎勵下的餘額
type GetBalanceQuery struct {
	BusinessID string
	OperatorID string
	RewardID   string
	QRToken    string
}

// GetScanEventQuery 查詢單筆掃描事件
type GetScanEventQuery struct {
	BusinessID  string
	OperatorID  string
	RewardID    string
	ScanEventID string
}

// GetRedemptionQuery 查詢單筆兌換紀錄
type GetRedemptionQuery struct {
	BusinessID   string
	OperatorID   string
	RewardID     string
	RedemptionID string
}

// ===========================
// 輸出
// ===========================

// ScanEventInfo 掃描事件
type ScanEventInfo struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	RewardID     string    `json:"reward_id"`
	OperatorID   string    `json:"operator_id"`
	QRToken      string    `json:"qr_code_value"`
	PointsChange int       `json:"points_change"`
	ScannedAt    time.Time `json:"scanned_at"`
}

// RewardInfo 可兌換的獎勵
type RewardInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"reward_type"`
	RequiredPoints int    `json:"required_points"`
}

// ClaimedRewardsInfo 本次兌換摘要
type ClaimedRewardsInfo struct {
	NumberClaimed       int      `json:"number_claimed"`
	RewardName          string   `json:"reward_name"`
	TotalPointsDeducted int      `json:"total_points_deducted"`
	RedemptionIDs       []string `json:"redemption_ids"`
}

// ScanResult 掃描結果
type ScanResult struct {
	ScanEvent           ScanEventInfo       `json:"scan_event"`
	CustomerName        string              `json:"customer_name"`
	CurrentBalance      int                 `json:"current_balance"`
	RewardAvailable     bool                `json:"reward_available"`
	AvailableReward     *RewardInfo         `json:"available_reward,omitempty"`
	NumRewardsAvailable int                 `json:"num_rewards_available"`
	ClaimedRewards      *ClaimedRewardsInfo `json:"claimed_rewards,omitempty"`
}

// BalanceInfo 餘額查詢結果
type BalanceInfo struct {
	QRToken             string      `json:"qr_code_value"`
	CustomerName        string      `json:"customer_name"`
	CurrentBalance      int         `json:"current_balance"`
	RewardAvailable     bool        `json:"reward_available"`
	AvailableReward     *RewardInfo `json:"available_reward,omitempty"`
	NumRewardsAvailable int         `json:"num_rewards_available"`
}

// RedemptionInfo 兌換紀錄
type RedemptionInfo struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	RewardID   string    `json:"reward_id"`
	OperatorID string    `json:"operator_id,omitempty"`
	RedeemedAt time.Time `json:"redeemed_at"`
}
