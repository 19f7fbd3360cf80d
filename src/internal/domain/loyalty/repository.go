package loyalty

import "context"

// ===========================
// Repository 介面
// ===========================
//
// 所有方法接受 context.Context：若 ctx 攜帶事務（TransactionManager.InTransaction
// 傳入的 ctx），就在該事務中執行；否則使用 auto-commit 連線。
// 查無資料時返回對應的 *NotFound 錯誤（Kind = NotFound），而非 nil, nil。

// CustomerRepository 顧客查詢
type CustomerRepository interface {
	FindByQRToken(ctx context.Context, token QRToken) (*Customer, error)
}

// OperatorRepository 商家操作員查詢
type OperatorRepository interface {
	FindByID(ctx context.Context, id OperatorID) (*BusinessOperator, error)
}

// BusinessRepository 商家查詢
type BusinessRepository interface {
	FindByID(ctx context.Context, id BusinessID) (*Business, error)
}

// RewardRepository 獎勵
type RewardRepository interface {
	FindByID(ctx context.Context, id RewardID) (*Reward, error)
	// FindByBusinessID 商家唯一的獎勵；沒有時返回 ErrRewardNotFound
	FindByBusinessID(ctx context.Context, businessID BusinessID) (*Reward, error)
	// Save 新增獎勵；商家已有獎勵時返回 ErrRewardAlreadyExists
	Save(ctx context.Context, reward *Reward) error
}

// BalanceRepository 顧客點數餘額
type BalanceRepository interface {
	// FindByCustomerAndReward 一般讀取
	FindByCustomerAndReward(ctx context.Context, customerID CustomerID, rewardID RewardID) (*CustomerBalance, error)

	// FindByCustomerAndRewardForUpdate 在事務中讀取並鎖定該列（SELECT ... FOR UPDATE）
	FindByCustomerAndRewardForUpdate(ctx context.Context, customerID CustomerID, rewardID RewardID) (*CustomerBalance, error)

	// Save 新增餘額紀錄
	// (customer, reward) 已存在時返回 ErrConcurrentUpdate（另一個請求先建立了）
	Save(ctx context.Context, balance *CustomerBalance) error

	// Update 以載入時的 version 做 compare-and-swap，成功後 version + 1
	// 版本不符時返回 ErrConcurrentUpdate
	Update(ctx context.Context, balance *CustomerBalance) error
}

// ScanEventRepository 掃描事件
type ScanEventRepository interface {
	Save(ctx context.Context, event *ScanEvent) error
	FindByRewardAndID(ctx context.Context, rewardID RewardID, id ScanEventID) (*ScanEvent, error)
}

// RedemptionRepository 兌換紀錄
type RedemptionRepository interface {
	SaveAll(ctx context.Context, redemptions []*RewardRedemption) error
	FindByRewardAndID(ctx context.Context, rewardID RewardID, id RedemptionID) (*RewardRedemption, error)
}

// ===========================
// Repository 錯誤
// ===========================

const (
	ErrCodeCustomerNotFound   ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrCodeOperatorNotFound   ErrorCode = "OPERATOR_NOT_FOUND"
	ErrCodeBusinessNotFound   ErrorCode = "BUSINESS_NOT_FOUND"
	ErrCodeRewardNotFound     ErrorCode = "REWARD_NOT_FOUND"
	ErrCodeBalanceNotFound    ErrorCode = "BALANCE_NOT_FOUND"
	ErrCodeScanEventNotFound  ErrorCode = "SCAN_EVENT_NOT_FOUND"
	ErrCodeRedemptionNotFound ErrorCode = "REDEMPTION_NOT_FOUND"
	ErrCodeRepositoryError    ErrorCode = "REPOSITORY_ERROR"
)

var (
	ErrCustomerNotFound = &DomainError{
		Code:    ErrCodeCustomerNotFound,
		Kind:    KindNotFound,
		Message: "Customer not found",
	}

	ErrOperatorNotFound = &DomainError{
		Code:    ErrCodeOperatorNotFound,
		Kind:    KindNotFound,
		Message: "Business user not found",
	}

	ErrBusinessNotFound = &DomainError{
		Code:    ErrCodeBusinessNotFound,
		Kind:    KindNotFound,
		Message: "Business not found",
	}

	ErrRewardNotFound = &DomainError{
		Code:    ErrCodeRewardNotFound,
		Kind:    KindNotFound,
		Message: "Reward not found",
	}

	ErrBalanceNotFound = &DomainError{
		Code:    ErrCodeBalanceNotFound,
		Kind:    KindNotFound,
		Message: "Balance not found",
	}

	ErrScanEventNotFound = &DomainError{
		Code:    ErrCodeScanEventNotFound,
		Kind:    KindNotFound,
		Message: "Scan event not found",
	}

	ErrRedemptionNotFound = &DomainError{
		Code:    ErrCodeRedemptionNotFound,
		Kind:    KindNotFound,
		Message: "Redemption not found",
	}

	// ErrRepository 其他持久化錯誤（對外一律轉為 ErrTransactionFailed）
	ErrRepository = &DomainError{
		Code:    ErrCodeRepositoryError,
		Kind:    KindInternal,
		Message: "Repository operation failed",
	}
)
