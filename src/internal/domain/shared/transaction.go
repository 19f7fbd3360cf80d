package shared

import "context"

// TransactionManager 事務管理器介面
//
// 事務透過 context 傳遞：fn 收到的 ctx 攜帶進行中的事務，
// Repository 從 ctx 取出事務連線；不攜帶事務的 ctx 則使用 auto-commit 連線。
//
// 行為約定：
// - fn 返回 nil：提交
// - fn 返回錯誤：回滾，原樣返回該錯誤
// - fn panic：回滾後重新 panic
// - ctx 在提交前被取消：回滾
//
// 範例：
//
//	err := txManager.InTransaction(ctx, func(txCtx context.Context) error {
//	    balance, err := balances.FindByCustomerAndRewardForUpdate(txCtx, customerID, rewardID)
//	    ...
//	    return balances.Update(txCtx, balance)
//	})
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
