package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
)

// GORMTransactionManager 以 GORM 實作 shared.TransactionManager
//
// fn 返回錯誤、panic 或 ctx 在提交前被取消時回滾；panic 回滾後重新拋出。
// 巢狀呼叫（ctx 已帶有事務）直接沿用外層事務。
type GORMTransactionManager struct {
	db *gorm.DB
}

// NewGORMTransactionManager 建立事務管理器
func NewGORMTransactionManager(db *gorm.DB) shared.TransactionManager {
	return &GORMTransactionManager{db: db}
}

// InTransaction 在事務中執行 fn
func (m *GORMTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := ctx.Err(); err != nil {
		tx.Rollback()
		return fmt.Errorf("transaction aborted: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
