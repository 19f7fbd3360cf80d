package persistence

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// ===========================
// 測試輔助函數
// ===========================

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// setupTestDB 建立 SQLite in-memory 資料庫
//
// 單一連線：in-memory 資料庫只存在於建立它的連線中。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := limitToSingleConnection(db); err != nil {
		t.Fatalf("Failed to configure test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = Close(db)
	})
	return db
}

// seeded 一組測試資料：商家、操作員、獎勵、顧客
type seeded struct {
	businessID loyalty.BusinessID
	operatorID loyalty.OperatorID
	rewardID   loyalty.RewardID
	customerID loyalty.CustomerID
	qrToken    loyalty.QRToken
}

func seedParties(t *testing.T, db *gorm.DB, costPoints int) seeded {
	t.Helper()

	s := seeded{
		businessID: loyalty.NewBusinessID(),
		operatorID: loyalty.NewOperatorID(),
		rewardID:   loyalty.NewRewardID(),
		customerID: loyalty.NewCustomerID(),
	}
	token, err := loyalty.NewQRToken("qr-" + s.customerID.String())
	if err != nil {
		t.Fatalf("invalid token: %v", err)
	}
	s.qrToken = token

	rows := []interface{}{
		&BusinessModel{ID: s.businessID.String(), Name: "Corner Cafe", CreatedAt: testNow},
		&BusinessOperatorModel{
			ID:         s.operatorID.String(),
			BusinessID: s.businessID.String(),
			AuthUserID: "auth0|barista-" + s.operatorID.String(),
			Email:      "barista@example.com",
			CreatedAt:  testNow,
		},
		&RewardModel{
			ID:         s.rewardID.String(),
			BusinessID: s.businessID.String(),
			Name:       "Free Coffee",
			RewardType: loyalty.RewardKindIncrementalPointsTag,
			CostPoints: costPoints,
			IsActive:   true,
			CreatedAt:  testNow,
		},
		&CustomerModel{
			ID:         s.customerID.String(),
			AuthUserID: "auth0|alice",
			Email:      "alice@example.com",
			FirstName:  "Alice",
			LastName:   "Chen",
			QRToken:    token.String(),
			CreatedAt:  testNow,
		},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("failed to seed %T: %v", row, err)
		}
	}
	return s
}

// seedBalance 直接寫入餘額
func seedBalance(t *testing.T, db *gorm.DB, s seeded, points int) {
	t.Helper()
	err := db.Create(&CustomerBalanceModel{
		ID:          loyalty.NewBalanceID().String(),
		CustomerID:  s.customerID.String(),
		RewardID:    s.rewardID.String(),
		Balance:     points,
		Version:     1,
		LastUpdated: testNow,
	}).Error
	if err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count %T: %v", model, err)
	}
	return n
}
