package loyalty

import (
	"fmt"
	"strings"
)

// 單次掃描的業務上限
const (
	MaxPointsPerScan = 10
	MaxClaimsPerScan = 100
)

// ===========================
// PointsAmount
// ===========================

// PointsAmount 點數數量值對象（不可變，永遠 >= 0）
type PointsAmount struct {
	value int
}

// NewPointsAmount 建構函數（checked 版本）
func NewPointsAmount(value int) (PointsAmount, error) {
	if value < 0 {
		return PointsAmount{}, fmt.Errorf(
			"%w: attempted to create PointsAmount with value %d",
			ErrNegativePointsAmount,
			value,
		)
	}
	return PointsAmount{value: value}, nil
}

// newPointsAmountUnchecked 內部建構函數
// 前提：調用者保證 value >= 0
func newPointsAmountUnchecked(value int) PointsAmount {
	return PointsAmount{value: value}
}

// ZeroPoints 零點
func ZeroPoints() PointsAmount {
	return PointsAmount{}
}

// Value 取得整數值
func (p PointsAmount) Value() int {
	return p.value
}

// IsZero 是否為零
func (p PointsAmount) IsZero() bool {
	return p.value == 0
}

// Add 相加
func (p PointsAmount) Add(other PointsAmount) PointsAmount {
	return newPointsAmountUnchecked(p.value + other.value)
}

// Subtract 相減；不足時返回帶有所需/可用點數的 ErrInsufficientPoints
func (p PointsAmount) Subtract(other PointsAmount) (PointsAmount, error) {
	if p.value < other.value {
		return PointsAmount{}, NewInsufficientPointsError(other, p)
	}
	return newPointsAmountUnchecked(p.value - other.value), nil
}

// Times 乘以兌換份數（cost × count）
func (p PointsAmount) Times(count ClaimCount) PointsAmount {
	return newPointsAmountUnchecked(p.value * count.Value())
}

// DivideBy 可兌換的整數份數（floor(p / cost)）；cost 為 0 時返回 0
func (p PointsAmount) DivideBy(cost PointsAmount) int {
	if cost.value == 0 {
		return 0
	}
	return p.value / cost.value
}

// Equals 是否相等
func (p PointsAmount) Equals(other PointsAmount) bool {
	return p.value == other.value
}

// LessThan 是否小於
func (p PointsAmount) LessThan(other PointsAmount) bool {
	return p.value < other.value
}

// GreaterThanOrEqual 是否大於等於
func (p PointsAmount) GreaterThanOrEqual(other PointsAmount) bool {
	return p.value >= other.value
}

// ===========================
// ClaimCount
// ===========================

// ClaimCount 單次請求兌換的份數（0..MaxClaimsPerScan）
type ClaimCount struct {
	value int
}

// NewClaimCount 驗證並建立兌換份數
func NewClaimCount(value int) (ClaimCount, error) {
	if value < 0 || value > MaxClaimsPerScan {
		return ClaimCount{}, ErrInvalidClaimCount.WithContext("claim_count", value)
	}
	return ClaimCount{value: value}, nil
}

// Value 取得整數值
func (c ClaimCount) Value() int {
	return c.value
}

// IsZero 本次不兌換
func (c ClaimCount) IsZero() bool {
	return c.value == 0
}

// ===========================
// PointsToAdd
// ===========================

// NewPointsToAdd 驗證單次掃描累積的點數
//
// 一般掃描必須為 1..MaxPointsPerScan；純兌換（claiming = true）時允許 0。
func NewPointsToAdd(value int, claiming bool) (PointsAmount, error) {
	if value == 0 && claiming {
		return ZeroPoints(), nil
	}
	if value < 1 || value > MaxPointsPerScan {
		return PointsAmount{}, ErrInvalidPointsToAdd.WithContext(
			"points_to_add", value,
			"claiming", claiming,
		)
	}
	return newPointsAmountUnchecked(value), nil
}

// ===========================
// QRToken
// ===========================

// QRToken 顧客 QR code 內容（不透明字串，由外部產生）
type QRToken struct {
	value string
}

// NewQRToken 驗證非空
func NewQRToken(value string) (QRToken, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return QRToken{}, ErrQRTokenRequired
	}
	return QRToken{value: trimmed}, nil
}

// String 原始字串
func (q QRToken) String() string {
	return q.value
}

// IsEmpty 是否為零值
func (q QRToken) IsEmpty() bool {
	return q.value == ""
}
