package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// GORMRewardRepository 獎勵 Repository
type GORMRewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository 建立獎勵 Repository
func NewRewardRepository(db *gorm.DB) loyalty.RewardRepository {
	return &GORMRewardRepository{db: db}
}

// FindByID 以 ID 查詢
func (r *GORMRewardRepository) FindByID(ctx context.Context, id loyalty.RewardID) (*loyalty.Reward, error) {
	var model RewardModel
	err := dbFromContext(ctx, r.db).First(&model, "id = ?", id.String()).Error
	if err != nil {
		return nil, mapError(err, loyalty.ErrRewardNotFound, nil)
	}
	return model.toDomain()
}

// FindByBusinessID 商家的獎勵
func (r *GORMRewardRepository) FindByBusinessID(ctx context.Context, businessID loyalty.BusinessID) (*loyalty.Reward, error) {
	var model RewardModel
	err := dbFromContext(ctx, r.db).Where("business_id = ?", businessID.String()).First(&model).Error
	if err != nil {
		return nil, mapError(err, loyalty.ErrRewardNotFound, nil)
	}
	return model.toDomain()
}

// Save 新增獎勵；business_id 唯一索引衝突時返回 ErrRewardAlreadyExists
func (r *GORMRewardRepository) Save(ctx context.Context, reward *loyalty.Reward) error {
	err := dbFromContext(ctx, r.db).Create(toRewardModel(reward)).Error
	return mapError(err, nil, loyalty.ErrRewardAlreadyExists)
}
