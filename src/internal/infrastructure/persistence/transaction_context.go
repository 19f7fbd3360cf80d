package persistence

import (
	"context"

	"gorm.io/gorm"
)

// ===========================
// 事務上下文
// ===========================
//
// 事務以 *gorm.DB 的形式放在 context.Context 中傳遞。
// Repository 透過 dbFromContext 取得：ctx 帶有事務時使用事務，
// 否則使用自己的預設連線。Domain 與 Application 層只看到 context.Context。

type txContextKey struct{}

// withTx 把事務放入 context
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// txFromContext 取出事務；沒有時 ok 為 false
func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx, ok
}

// dbFromContext Repository 使用的連線
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
