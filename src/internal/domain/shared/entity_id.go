package shared

import (
	"github.com/google/uuid"
)

// ===========================
// EntityID[T] 泛型實體 ID
// ===========================

// EntityID 泛型實體 ID 值對象
//
// 泛型參數 T 是標記類型（marker type），只用於編譯期區分：
// EntityID[CustomerMarker] 與 EntityID[RewardMarker] 是不同類型，不能混用。
//
// 使用範例：
//
//	type RewardMarker struct{}
//	type RewardID = shared.EntityID[RewardMarker]
//
//	id := shared.NewEntityID[RewardMarker]()
//	parsed, err := shared.EntityIDFromString[RewardMarker](s, ErrInvalidRewardID)
type EntityID[T any] struct {
	value uuid.UUID
}

// NewEntityID 生成新的實體 ID（UUID v4）
func NewEntityID[T any]() EntityID[T] {
	return EntityID[T]{value: uuid.New()}
}

// EntityIDFromUUID 由已驗證的 uuid.UUID 建立實體 ID
func EntityIDFromUUID[T any](id uuid.UUID) EntityID[T] {
	return EntityID[T]{value: id}
}

// EntityIDFromString 從字串解析實體 ID
//
// errTemplate 由各 bounded context 提供（例如 loyalty.ErrInvalidRewardID），
// 讓 shared 不依賴具體業務錯誤。若 errTemplate 支援 WithContext，
// 會附上原始輸入與解析錯誤。
//
// 空字串與 uuid.Nil 都視為無效輸入。
func EntityIDFromString[T any](s string, errTemplate error) (EntityID[T], error) {
	id, err := uuid.Parse(s)
	if err == nil && id == uuid.Nil {
		err = errNilUUID
	}
	if err != nil {
		if domainErr, ok := errTemplate.(contextualError); ok {
			return EntityID[T]{}, domainErr.WithContext(
				"input", s,
				"parse_error", err.Error(),
			)
		}
		return EntityID[T]{}, errTemplate
	}
	return EntityID[T]{value: id}, nil
}

// contextualError 可附加上下文的錯誤（各 bounded context 的 DomainError 皆實作）
type contextualError interface {
	WithContext(keyValues ...interface{}) error
}

// String 小寫 UUID 字串
func (e EntityID[T]) String() string {
	return e.value.String()
}

// UUID 取得底層 uuid.UUID
func (e EntityID[T]) UUID() uuid.UUID {
	return e.value
}

// Equals 比較兩個同類型 ID
func (e EntityID[T]) Equals(other EntityID[T]) bool {
	return e.value == other.value
}

// IsEmpty 是否為零值 ID
func (e EntityID[T]) IsEmpty() bool {
	return e.value == uuid.Nil
}

// MarshalText 讓 ID 在 JSON（事件 payload、DTO）中序列化為 UUID 字串
func (e EntityID[T]) MarshalText() ([]byte, error) {
	return []byte(e.value.String()), nil
}

// UnmarshalText 解析 UUID 字串
func (e *EntityID[T]) UnmarshalText(text []byte) error {
	id, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	e.value = id
	return nil
}

type nilUUIDError struct{}

func (nilUUIDError) Error() string { return "nil uuid is not a valid entity id" }

var errNilUUID error = nilUUIDError{}
