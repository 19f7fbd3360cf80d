package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// ===========================
// Repository 整合測試（SQLite）
// ===========================

// Test 1: 以 QR code 找顧客
func TestCustomerRepository_FindByQRToken(t *testing.T) {
	db := setupTestDB(t)
	s := seedParties(t, db, 5)
	repo := NewCustomerRepository(db)

	customer, err := repo.FindByQRToken(context.Background(), s.qrToken)
	require.NoError(t, err)
	assert.Equal(t, s.customerID, customer.ID)
	assert.Equal(t, "Alice Chen", customer.DisplayName())

	unknown, _ := loyalty.NewQRToken("qr-nobody")
	_, err = repo.FindByQRToken(context.Background(), unknown)
	assert.ErrorIs(t, err, loyalty.ErrCustomerNotFound)
}

// Test 2: 操作員與商家查詢
func TestOperatorAndBusinessRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	s := seedParties(t, db, 5)

	operator, err := NewOperatorRepository(db).FindByID(context.Background(), s.operatorID)
	require.NoError(t, err)
	assert.True(t, operator.BelongsTo(s.businessID))

	_, err = NewOperatorRepository(db).FindByID(context.Background(), loyalty.NewOperatorID())
	assert.ErrorIs(t, err, loyalty.ErrOperatorNotFound)

	business, err := NewBusinessRepository(db).FindByID(context.Background(), s.businessID)
	require.NoError(t, err)
	assert.Equal(t, "Corner Cafe", business.Name)

	_, err = NewBusinessRepository(db).FindByID(context.Background(), loyalty.NewBusinessID())
	assert.ErrorIs(t, err, loyalty.ErrBusinessNotFound)
}

// Test 3: 獎勵保存、查詢、metadata 與每個商家一個
func TestRewardRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRewardRepository(db)
	businessID := loyalty.NewBusinessID()
	require.NoError(t, db.Create(&BusinessModel{ID: businessID.String(), Name: "Bakery", CreatedAt: testNow}).Error)

	reward, err := loyalty.NewReward(businessID, "Free Croissant", loyalty.IncrementalPoints{}, 8,
		map[string]interface{}{"size": "large"}, testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), reward))

	found, err := repo.FindByID(context.Background(), reward.ID())
	require.NoError(t, err)
	assert.Equal(t, "Free Croissant", found.Name())
	assert.Equal(t, 8, found.CostPoints().Value())
	assert.Equal(t, loyalty.RewardKindIncrementalPointsTag, found.Kind().Tag())
	assert.Equal(t, "large", found.Metadata()["size"])

	byBusiness, err := repo.FindByBusinessID(context.Background(), businessID)
	require.NoError(t, err)
	assert.Equal(t, reward.ID(), byBusiness.ID())

	second, err := loyalty.NewReward(businessID, "Free Bagel", loyalty.IncrementalPoints{}, 3, nil, testNow)
	require.NoError(t, err)
	err = repo.Save(context.Background(), second)
	assert.ErrorIs(t, err, loyalty.ErrRewardAlreadyExists)

	_, err = repo.FindByID(context.Background(), loyalty.NewRewardID())
	assert.ErrorIs(t, err, loyalty.ErrRewardNotFound)
}

// Test 4: 未知的獎勵類型視為資料損毀
func TestRewardRepository_UnknownType_Corrupted(t *testing.T) {
	db := setupTestDB(t)
	s := seedParties(t, db, 5)
	require.NoError(t, db.Model(&RewardModel{}).Where("id = ?", s.rewardID.String()).
		Update("reward_type", "mystery").Error)

	_, err := NewRewardRepository(db).FindByID(context.Background(), s.rewardID)

	require.Error(t, err)
	assert.ErrorIs(t, err, loyalty.ErrRepository)
}

// Test 5: 餘額新增、重複新增、CAS 更新
func TestBalanceRepository_SaveUpdateAndConflicts(t *testing.T) {
	db := setupTestDB(t)
	s := seedParties(t, db, 5)
	repo := NewBalanceRepository(db)
	ctx := context.Background()

	initial, _ := loyalty.NewPointsAmount(3)
	opened := loyalty.OpenCustomerBalance(s.customerID, s.rewardID, initial, testNow)
	require.NoError(t, repo.Save(ctx, opened))

	// 同一 (customer, reward) 再次新增
	duplicate := loyalty.OpenCustomerBalance(s.customerID, s.rewardID, initial, testNow)
	err := repo.Save(ctx, duplicate)
	assert.ErrorIs(t, err, loyalty.ErrConcurrentUpdate)

	// 兩個請求讀到同一版本
	first, err := repo.FindByCustomerAndReward(ctx, s.customerID, s.rewardID)
	require.NoError(t, err)
	stale, err := repo.FindByCustomerAndRewardForUpdate(ctx, s.customerID, s.rewardID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version())

	two, _ := loyalty.NewPointsAmount(2)
	first.Accrue(two, testNow)
	require.NoError(t, repo.Update(ctx, first))

	stale.Accrue(two, testNow)
	err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, loyalty.ErrConcurrentUpdate)

	reloaded, err := repo.FindByCustomerAndReward(ctx, s.customerID, s.rewardID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Balance().Value())
	assert.Equal(t, 2, reloaded.Version())
	assert.True(t, reloaded.IsPersisted())
}

// Test 6: 查無餘額
func TestBalanceRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	s := seedParties(t, db, 5)

	_, err := NewBalanceRepository(db).FindByCustomerAndReward(context.Background(), s.customerID, s.rewardID)

	assert.ErrorIs(t, err, loyalty.ErrBalanceNotFound)
}

// Test 7: 資料庫層的 CHECK 約束拒絕負數餘額
func TestBalanceRepository_NegativeBalanceRejectedByDatabase(t *testing.T) {
	db := setupTestDB(t)
	s := seedParties(t, db, 5)

	err := db.Create(&CustomerBalanceModel{
		ID:          loyalty.NewBalanceID().String(),
		CustomerID:  s.customerID.String(),
		RewardID:    s.rewardID.String(),
		Balance:     -1,
		Version:     1,
		LastUpdated: testNow,
	}).Error

	assert.Error(t, err)
}

// Test 8: 掃描事件依獎勵隔離
func TestScanEventRepository_ScopedByReward(t *testing.T) {
	db := setupTestDB(t)
	s := seedParties(t, db, 5)
	repo := NewScanEventRepository(db)
	ctx := context.Background()

	points, _ := loyalty.NewPointsAmount(4)
	event := loyalty.RecordScan(s.customerID, s.rewardID, s.operatorID, s.qrToken, points, testNow)
	require.NoError(t, repo.Save(ctx, event))

	found, err := repo.FindByRewardAndID(ctx, s.rewardID, event.ID())
	require.NoError(t, err)
	assert.Equal(t, 4, found.PointsChange())
	assert.Equal(t, s.operatorID, found.OperatorID())
	assert.Equal(t, s.qrToken, found.QRToken())
	assert.True(t, found.ScannedAt().Equal(testNow))

	_, err = repo.FindByRewardAndID(ctx, loyalty.NewRewardID(), event.ID())
	assert.ErrorIs(t, err, loyalty.ErrScanEventNotFound)
}

// Test 9: 兌換紀錄批次新增（含沒有操作員的紀錄）
func TestRedemptionRepository_SaveAllAndFind(t *testing.T) {
	db := setupTestDB(t)
	s := seedParties(t, db, 5)
	repo := NewRedemptionRepository(db)
	ctx := context.Background()

	count, _ := loyalty.NewClaimCount(3)
	withOperator := loyalty.NewRewardRedemptions(s.customerID, s.rewardID, s.operatorID, count, testNow)
	one, _ := loyalty.NewClaimCount(1)
	withoutOperator := loyalty.NewRewardRedemptions(s.customerID, s.rewardID, loyalty.OperatorID{}, one, testNow)

	require.NoError(t, repo.SaveAll(ctx, withOperator))
	require.NoError(t, repo.SaveAll(ctx, withoutOperator))
	require.NoError(t, repo.SaveAll(ctx, nil))
	assert.Equal(t, int64(4), countRows(t, db, &RewardRedemptionModel{}))

	found, err := repo.FindByRewardAndID(ctx, s.rewardID, withOperator[2].ID())
	require.NoError(t, err)
	assert.True(t, found.HasOperator())
	assert.Equal(t, s.operatorID, found.OperatorID())

	anonymous, err := repo.FindByRewardAndID(ctx, s.rewardID, withoutOperator[0].ID())
	require.NoError(t, err)
	assert.False(t, anonymous.HasOperator())

	_, err = repo.FindByRewardAndID(ctx, s.rewardID, loyalty.NewRedemptionID())
	assert.ErrorIs(t, err, loyalty.ErrRedemptionNotFound)
}

// Test 10: 唯一鍵衝突判斷
func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: customer_balances.customer_id")))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "rewards_business_id_key" (SQLSTATE 23505)`)))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}
