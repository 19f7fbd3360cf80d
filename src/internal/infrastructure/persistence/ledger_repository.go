package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// ===========================
// 只新增的紀錄：掃描事件與兌換
// ===========================

// GORMScanEventRepository 掃描事件 Repository
type GORMScanEventRepository struct {
	db *gorm.DB
}

// NewScanEventRepository 建立掃描事件 Repository
func NewScanEventRepository(db *gorm.DB) loyalty.ScanEventRepository {
	return &GORMScanEventRepository{db: db}
}

// Save 新增掃描事件
func (r *GORMScanEventRepository) Save(ctx context.Context, event *loyalty.ScanEvent) error {
	err := dbFromContext(ctx, r.db).Create(toScanEventModel(event)).Error
	return mapError(err, nil, nil)
}

// FindByRewardAndID 查詢屬於 rewardID 的掃描事件
func (r *GORMScanEventRepository) FindByRewardAndID(ctx context.Context, rewardID loyalty.RewardID, id loyalty.ScanEventID) (*loyalty.ScanEvent, error) {
	var model ScanEventModel
	err := dbFromContext(ctx, r.db).
		Where("id = ? AND reward_id = ?", id.String(), rewardID.String()).
		First(&model).Error
	if err != nil {
		return nil, mapError(err, loyalty.ErrScanEventNotFound, nil)
	}
	return model.toDomain()
}

// GORMRedemptionRepository 兌換紀錄 Repository
type GORMRedemptionRepository struct {
	db *gorm.DB
}

// NewRedemptionRepository 建立兌換紀錄 Repository
func NewRedemptionRepository(db *gorm.DB) loyalty.RedemptionRepository {
	return &GORMRedemptionRepository{db: db}
}

// SaveAll 一次新增多筆
func (r *GORMRedemptionRepository) SaveAll(ctx context.Context, redemptions []*loyalty.RewardRedemption) error {
	if len(redemptions) == 0 {
		return nil
	}
	models := make([]*RewardRedemptionModel, 0, len(redemptions))
	for _, red := range redemptions {
		models = append(models, toRedemptionModel(red))
	}
	err := dbFromContext(ctx, r.db).Create(&models).Error
	return mapError(err, nil, nil)
}

// FindByRewardAndID 查詢屬於 rewardID 的兌換紀錄
func (r *GORMRedemptionRepository) FindByRewardAndID(ctx context.Context, rewardID loyalty.RewardID, id loyalty.RedemptionID) (*loyalty.RewardRedemption, error) {
	var model RewardRedemptionModel
	err := dbFromContext(ctx, r.db).
		Where("id = ? AND reward_id = ?", id.String(), rewardID.String()).
		First(&model).Error
	if err != nil {
		return nil, mapError(err, loyalty.ErrRedemptionNotFound, nil)
	}
	return model.toDomain()
}
