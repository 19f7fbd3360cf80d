package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// GORMBalanceRepository 顧客餘額 Repository
//
// 並發控制有兩層：
// 1. FindByCustomerAndRewardForUpdate 在 postgres 上以 SELECT ... FOR UPDATE 鎖定該列
//    （sqlite 以整個資料庫的寫入鎖序列化，不需要列鎖）
// 2. Update 以 version 做 compare-and-swap，Save 依賴 (customer_id, reward_id) 唯一索引
type GORMBalanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository 建立餘額 Repository
func NewBalanceRepository(db *gorm.DB) loyalty.BalanceRepository {
	return &GORMBalanceRepository{db: db}
}

// FindByCustomerAndReward 一般讀取
func (r *GORMBalanceRepository) FindByCustomerAndReward(ctx context.Context, customerID loyalty.CustomerID, rewardID loyalty.RewardID) (*loyalty.CustomerBalance, error) {
	return r.find(dbFromContext(ctx, r.db), customerID, rewardID)
}

// FindByCustomerAndRewardForUpdate 鎖定讀取（須在事務中呼叫）
func (r *GORMBalanceRepository) FindByCustomerAndRewardForUpdate(ctx context.Context, customerID loyalty.CustomerID, rewardID loyalty.RewardID) (*loyalty.CustomerBalance, error) {
	db := dbFromContext(ctx, r.db)
	if supportsRowLocking(db) {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.find(db, customerID, rewardID)
}

func (r *GORMBalanceRepository) find(db *gorm.DB, customerID loyalty.CustomerID, rewardID loyalty.RewardID) (*loyalty.CustomerBalance, error) {
	var model CustomerBalanceModel
	err := db.
		Where("customer_id = ? AND reward_id = ?", customerID.String(), rewardID.String()).
		First(&model).Error
	if err != nil {
		return nil, mapError(err, loyalty.ErrBalanceNotFound, nil)
	}
	return model.toDomain()
}

// Save 新增餘額；同一 (customer, reward) 已存在時返回 ErrConcurrentUpdate
func (r *GORMBalanceRepository) Save(ctx context.Context, balance *loyalty.CustomerBalance) error {
	err := dbFromContext(ctx, r.db).Create(toBalanceModel(balance)).Error
	return mapError(err, nil, loyalty.ErrConcurrentUpdate)
}

// Update 以載入時的 version 更新；版本不符時返回 ErrConcurrentUpdate
func (r *GORMBalanceRepository) Update(ctx context.Context, balance *loyalty.CustomerBalance) error {
	result := dbFromContext(ctx, r.db).
		Model(&CustomerBalanceModel{}).
		Where("id = ? AND version = ?", balance.ID().String(), balance.Version()).
		Updates(map[string]interface{}{
			"balance":      balance.Balance().Value(),
			"version":      gorm.Expr("version + 1"),
			"last_updated": balance.LastUpdated(),
		})
	if result.Error != nil {
		return mapError(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return loyalty.ErrConcurrentUpdate.WithContext(
			"balance_id", balance.ID().String(),
			"version", balance.Version(),
		)
	}
	return nil
}

func supportsRowLocking(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
