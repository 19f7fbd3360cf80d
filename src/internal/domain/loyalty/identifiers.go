package loyalty

import (
	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
)

// ===========================
// 實體 ID 類型
// ===========================
//
// 每個實體一個標記類型 + 類型別名，彼此不能混用。
// 解析失敗統一返回 ErrInvalidID（附上 entity 上下文）。

type CustomerMarker struct{}
type BusinessMarker struct{}
type OperatorMarker struct{}
type RewardMarker struct{}
type BalanceMarker struct{}
type ScanEventMarker struct{}
type RedemptionMarker struct{}

type (
	CustomerID   = shared.EntityID[CustomerMarker]
	BusinessID   = shared.EntityID[BusinessMarker]
	OperatorID   = shared.EntityID[OperatorMarker]
	RewardID     = shared.EntityID[RewardMarker]
	BalanceID    = shared.EntityID[BalanceMarker]
	ScanEventID  = shared.EntityID[ScanEventMarker]
	RedemptionID = shared.EntityID[RedemptionMarker]
)

func NewCustomerID() CustomerID     { return shared.NewEntityID[CustomerMarker]() }
func NewBusinessID() BusinessID     { return shared.NewEntityID[BusinessMarker]() }
func NewOperatorID() OperatorID     { return shared.NewEntityID[OperatorMarker]() }
func NewRewardID() RewardID         { return shared.NewEntityID[RewardMarker]() }
func NewBalanceID() BalanceID       { return shared.NewEntityID[BalanceMarker]() }
func NewScanEventID() ScanEventID   { return shared.NewEntityID[ScanEventMarker]() }
func NewRedemptionID() RedemptionID { return shared.NewEntityID[RedemptionMarker]() }

// CustomerIDFromString 解析顧客 ID
func CustomerIDFromString(s string) (CustomerID, error) {
	return shared.EntityIDFromString[CustomerMarker](s, ErrInvalidID.with("entity", "customer"))
}

// BusinessIDFromString 解析商家 ID
func BusinessIDFromString(s string) (BusinessID, error) {
	return shared.EntityIDFromString[BusinessMarker](s, ErrInvalidID.with("entity", "business"))
}

// OperatorIDFromString 解析商家操作員 ID
func OperatorIDFromString(s string) (OperatorID, error) {
	return shared.EntityIDFromString[OperatorMarker](s, ErrInvalidID.with("entity", "operator"))
}

// RewardIDFromString 解析獎勵 ID
func RewardIDFromString(s string) (RewardID, error) {
	return shared.EntityIDFromString[RewardMarker](s, ErrInvalidID.with("entity", "reward"))
}

// BalanceIDFromString 解析餘額紀錄 ID
func BalanceIDFromString(s string) (BalanceID, error) {
	return shared.EntityIDFromString[BalanceMarker](s, ErrInvalidID.with("entity", "balance"))
}

// ScanEventIDFromString 解析掃描事件 ID
func ScanEventIDFromString(s string) (ScanEventID, error) {
	return shared.EntityIDFromString[ScanEventMarker](s, ErrInvalidID.with("entity", "scan_event"))
}

// RedemptionIDFromString 解析兌換紀錄 ID
func RedemptionIDFromString(s string) (RedemptionID, error) {
	return shared.EntityIDFromString[RedemptionMarker](s, ErrInvalidID.with("entity", "redemption"))
}
