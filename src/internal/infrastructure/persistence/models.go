package persistence

import (
	"time"

	"gorm.io/datatypes"
)

// ===========================
// GORM Models
// ===========================
//
// 僅供 Infrastructure Layer 使用，與 Domain 聚合之間以 mapper 轉換。
// ID 一律以 UUID 字串儲存。postgres 的正式結構由 migrations/ 管理，
// AutoMigrate 只用於 sqlite（本機與測試）。

// CustomerModel 顧客
type CustomerModel struct {
	ID         string    `gorm:"column:id;type:varchar(36);primaryKey"`
	AuthUserID string    `gorm:"column:auth_user_id;type:varchar(255);index"`
	Email      string    `gorm:"column:email;type:varchar(255)"`
	FirstName  string    `gorm:"column:first_name;type:varchar(100)"`
	LastName   string    `gorm:"column:last_name;type:varchar(100)"`
	QRToken    string    `gorm:"column:qr_token;type:varchar(255);uniqueIndex;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (CustomerModel) TableName() string { return "customers" }

// BusinessModel 商家
type BusinessModel struct {
	ID         string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Name       string    `gorm:"column:name;type:varchar(255);not null"`
	CategoryID string    `gorm:"column:category_id;type:varchar(36)"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (BusinessModel) TableName() string { return "businesses" }

// BusinessOperatorModel 商家操作員
type BusinessOperatorModel struct {
	ID         string    `gorm:"column:id;type:varchar(36);primaryKey"`
	BusinessID string    `gorm:"column:business_id;type:varchar(36);index;not null"`
	AuthUserID string    `gorm:"column:auth_user_id;type:varchar(255);not null"`
	Email      string    `gorm:"column:email;type:varchar(255)"`
	IsAdmin    bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (BusinessOperatorModel) TableName() string { return "business_operators" }

// RewardModel 獎勵（每個商家一個）
type RewardModel struct {
	ID         string            `gorm:"column:id;type:varchar(36);primaryKey"`
	BusinessID string            `gorm:"column:business_id;type:varchar(36);uniqueIndex;not null"`
	Name       string            `gorm:"column:name;type:varchar(255);not null"`
	RewardType string            `gorm:"column:reward_type;type:varchar(50);not null"`
	CostPoints int               `gorm:"column:cost_points;not null;check:cost_points >= 0"`
	IsActive   bool              `gorm:"column:is_active;not null;default:true"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata"`
	CreatedAt  time.Time         `gorm:"column:created_at;not null"`
}

func (RewardModel) TableName() string { return "rewards" }

// CustomerBalanceModel 顧客在某獎勵下的點數
//
// (customer_id, reward_id) 唯一；version 供 compare-and-swap 使用。
type CustomerBalanceModel struct {
	ID          string    `gorm:"column:id;type:varchar(36);primaryKey"`
	CustomerID  string    `gorm:"column:customer_id;type:varchar(36);not null;uniqueIndex:idx_customer_balances_customer_reward"`
	RewardID    string    `gorm:"column:reward_id;type:varchar(36);not null;uniqueIndex:idx_customer_balances_customer_reward"`
	Balance     int       `gorm:"column:balance;not null;default:0;check:balance >= 0"`
	Version     int       `gorm:"column:version;not null;default:1"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
}

func (CustomerBalanceModel) TableName() string { return "customer_balances" }

// ScanEventModel 掃描事件（只新增）
type ScanEventModel struct {
	ID           string    `gorm:"column:id;type:varchar(36);primaryKey"`
	CustomerID   string    `gorm:"column:customer_id;type:varchar(36);index;not null"`
	RewardID     string    `gorm:"column:reward_id;type:varchar(36);index;not null"`
	OperatorID   string    `gorm:"column:operator_id;type:varchar(36);not null"`
	QRToken      string    `gorm:"column:qr_token;type:varchar(255);not null"`
	PointsChange int       `gorm:"column:points_change;not null"`
	ScannedAt    time.Time `gorm:"column:scanned_at;not null"`
}

func (ScanEventModel) TableName() string { return "scan_events" }

// RewardRedemptionModel 兌換紀錄（只新增）
type RewardRedemptionModel struct {
	ID         string    `gorm:"column:id;type:varchar(36);primaryKey"`
	CustomerID string    `gorm:"column:customer_id;type:varchar(36);index;not null"`
	RewardID   string    `gorm:"column:reward_id;type:varchar(36);index;not null"`
	OperatorID *string   `gorm:"column:operator_id;type:varchar(36)"`
	RedeemedAt time.Time `gorm:"column:redeemed_at;not null"`
}

func (RewardRedemptionModel) TableName() string { return "reward_redemptions" }

// allModels AutoMigrate 的順序
func allModels() []interface{} {
	return []interface{}{
		&CustomerModel{},
		&BusinessModel{},
		&BusinessOperatorModel{},
		&RewardModel{},
		&CustomerBalanceModel{},
		&ScanEventModel{},
		&RewardRedemptionModel{},
	}
}
