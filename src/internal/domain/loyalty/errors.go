package loyalty

import (
	"errors"
	"fmt"
)

// ===========================
// 錯誤分類
// ===========================

// ErrorKind 錯誤類別，傳輸層依此決定回應狀態
type ErrorKind string

const (
	KindUnauthorized       ErrorKind = "UNAUTHORIZED"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindInvalidRequest     ErrorKind = "INVALID_REQUEST"
	KindValidation         ErrorKind = "VALIDATION_ERROR"
	KindInsufficientPoints ErrorKind = "INSUFFICIENT_POINTS"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindTransactionFailed  ErrorKind = "TRANSACTION_FAILED"

	// 以下兩類僅供內部使用，不會原樣回應給呼叫者
	KindConflict ErrorKind = "CONFLICT"
	KindInternal ErrorKind = "INTERNAL"
)

// IsClientFacing 此類別的錯誤是否可以原樣回應給呼叫者
func (k ErrorKind) IsClientFacing() bool {
	switch k {
	case KindConflict, KindInternal:
		return false
	default:
		return true
	}
}

// ErrorCode 錯誤代碼（細分同一類別下的不同原因）
type ErrorCode string

const (
	// 授權與租戶
	ErrCodeUnauthenticated   ErrorCode = "UNAUTHENTICATED"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbiddenBusiness ErrorCode = "FORBIDDEN_BUSINESS"
	ErrCodeInvalidReward     ErrorCode = "INVALID_REWARD"

	// 交易驗證
	ErrCodeInvalidQROrReward   ErrorCode = "INVALID_QR_OR_REWARD"
	ErrCodeQRTokenRequired     ErrorCode = "QR_TOKEN_REQUIRED"
	ErrCodeInvalidClaimCount   ErrorCode = "CLAIM_COUNT_INVALID"
	ErrCodeInvalidPointsToAdd  ErrorCode = "POINTS_TO_ADD_INVALID"
	ErrCodeNoPointsYet         ErrorCode = "NO_POINTS_YET"
	ErrCodeInsufficientPoints  ErrorCode = "POINTS_INSUFFICIENT"
	ErrCodeNegativePoints      ErrorCode = "POINTS_NEGATIVE"
	ErrCodeTransactionFailed   ErrorCode = "TRANSACTION_FAILED"
	ErrCodeConcurrentUpdate    ErrorCode = "CONCURRENT_UPDATE"
	ErrCodeCorruptedBalance    ErrorCode = "BALANCE_CORRUPTED"
	ErrCodeInvalidRewardKind   ErrorCode = "REWARD_KIND_INVALID"
	ErrCodeInvalidRewardName   ErrorCode = "REWARD_NAME_INVALID"
	ErrCodeInvalidRewardCost   ErrorCode = "REWARD_COST_INVALID"
	ErrCodeRewardAlreadyExists ErrorCode = "REWARD_ALREADY_EXISTS"

	// 識別符
	ErrCodeInvalidID ErrorCode = "ID_INVALID"
)

// ===========================
// DomainError 結構
// ===========================

// DomainError 領域錯誤
//
// Message 是可以直接回應給呼叫者的文字；Context 只用於日誌，
// 傳輸層不得序列化 Context。
type DomainError struct {
	Code    ErrorCode
	Kind    ErrorKind
	Message string
	Context map[string]interface{}
}

// Error 實現 error 介面
func (e *DomainError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (context: %+v)", e.Code, e.Message, e.Context)
}

// WithContext 添加上下文（返回新的錯誤實例）
func (e *DomainError) WithContext(keyValues ...interface{}) error {
	return e.with(keyValues...)
}

func (e *DomainError) with(keyValues ...interface{}) *DomainError {
	if len(keyValues)%2 != 0 {
		panic("WithContext requires even number of arguments (key-value pairs)")
	}

	ctx := make(map[string]interface{}, len(e.Context)+len(keyValues)/2)
	for k, v := range e.Context {
		ctx[k] = v
	}
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			panic(fmt.Sprintf("context key must be string, got %T", keyValues[i]))
		}
		ctx[key] = keyValues[i+1]
	}

	return &DomainError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Context: ctx,
	}
}

// Is 實現 errors.Is（比較錯誤代碼）
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ===========================
// 預定義錯誤
// ===========================

// 授權與租戶
var (
	ErrUnauthenticated = &DomainError{
		Code:    ErrCodeUnauthenticated,
		Kind:    KindUnauthorized,
		Message: "User is not authenticated",
	}

	// ErrUnauthorized 操作員不存在或身分不符（兩者對外不可區分）
	ErrUnauthorized = &DomainError{
		Code:    ErrCodeUnauthorized,
		Kind:    KindUnauthorized,
		Message: "You are not authorized to perform this action",
	}

	ErrForbiddenBusiness = &DomainError{
		Code:    ErrCodeForbiddenBusiness,
		Kind:    KindForbidden,
		Message: "You do not have permission to perform this action for this business",
	}

	// ErrInvalidReward 獎勵不存在或不屬於此商家（兩者對外不可區分）
	ErrInvalidReward = &DomainError{
		Code:    ErrCodeInvalidReward,
		Kind:    KindNotFound,
		Message: "Invalid reward",
	}
)

// 交易驗證
var (
	// ErrInvalidQROrReward 顧客或獎勵查無資料的通用錯誤，不透露是哪一個
	ErrInvalidQROrReward = &DomainError{
		Code:    ErrCodeInvalidQROrReward,
		Kind:    KindInvalidRequest,
		Message: "Invalid QR code or reward",
	}

	ErrQRTokenRequired = &DomainError{
		Code:    ErrCodeQRTokenRequired,
		Kind:    KindValidation,
		Message: "QR code value is required",
	}

	ErrInvalidClaimCount = &DomainError{
		Code:    ErrCodeInvalidClaimCount,
		Kind:    KindValidation,
		Message: fmt.Sprintf("Number of rewards to claim must be between 0 and %d", MaxClaimsPerScan),
	}

	ErrInvalidPointsToAdd = &DomainError{
		Code:    ErrCodeInvalidPointsToAdd,
		Kind:    KindValidation,
		Message: fmt.Sprintf("Points to add must be between 1 and %d", MaxPointsPerScan),
	}

	ErrNoPointsYet = &DomainError{
		Code:    ErrCodeNoPointsYet,
		Kind:    KindInsufficientPoints,
		Message: "You don't have any points for this reward yet",
	}

	ErrInsufficientPoints = &DomainError{
		Code:    ErrCodeInsufficientPoints,
		Kind:    KindInsufficientPoints,
		Message: "Insufficient points",
	}

	ErrNegativePointsAmount = &DomainError{
		Code:    ErrCodeNegativePoints,
		Kind:    KindValidation,
		Message: "Points amount cannot be negative",
	}

	// ErrTransactionFailed 持久化失敗時唯一對外的錯誤
	ErrTransactionFailed = &DomainError{
		Code:    ErrCodeTransactionFailed,
		Kind:    KindTransactionFailed,
		Message: "An error occurred while processing your request",
	}

	// ErrConcurrentUpdate 樂觀鎖衝突或唯一鍵競爭，由 Mutator 重試
	ErrConcurrentUpdate = &DomainError{
		Code:    ErrCodeConcurrentUpdate,
		Kind:    KindConflict,
		Message: "Balance was modified concurrently",
	}

	ErrCorruptedBalance = &DomainError{
		Code:    ErrCodeCorruptedBalance,
		Kind:    KindInternal,
		Message: "Stored balance violates invariants",
	}
)

// 獎勵設定
var (
	ErrInvalidRewardKind = &DomainError{
		Code:    ErrCodeInvalidRewardKind,
		Kind:    KindValidation,
		Message: "Invalid reward type",
	}

	ErrInvalidRewardName = &DomainError{
		Code:    ErrCodeInvalidRewardName,
		Kind:    KindValidation,
		Message: "Reward name is required",
	}

	ErrInvalidRewardCost = &DomainError{
		Code:    ErrCodeInvalidRewardCost,
		Kind:    KindValidation,
		Message: fmt.Sprintf("Cost points must be between 0 and %d", MaxRewardCost),
	}

	ErrRewardAlreadyExists = &DomainError{
		Code:    ErrCodeRewardAlreadyExists,
		Kind:    KindValidation,
		Message: "This business already has a reward",
	}
)

// ErrInvalidID 識別符格式錯誤
var ErrInvalidID = &DomainError{
	Code:    ErrCodeInvalidID,
	Kind:    KindValidation,
	Message: "Invalid identifier",
}

// NewInsufficientPointsError 帶有所需與可用點數的餘額不足錯誤
// errors.Is(err, ErrInsufficientPoints) 仍成立
func NewInsufficientPointsError(required, available PointsAmount) *DomainError {
	err := ErrInsufficientPoints.with(
		"required", required.Value(),
		"available", available.Value(),
	)
	err.Message = fmt.Sprintf(
		"Insufficient points. Required: %d, Available: %d",
		required.Value(),
		available.Value(),
	)
	return err
}

// AsDomainError 取出錯誤鏈中的 DomainError
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
