package persistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// uniqueViolationMarkers 各資料庫的唯一鍵衝突訊息
// SQLite: "UNIQUE constraint failed"
// PostgreSQL: "duplicate key value violates unique constraint"（SQLSTATE 23505）
var uniqueViolationMarkers = []string{"UNIQUE constraint", "duplicate key", "23505"}

// isUniqueViolation 是否為唯一鍵衝突
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// mapError 把 GORM 錯誤映射為領域錯誤
//
// - gorm.ErrRecordNotFound → notFound
// - 唯一鍵衝突            → duplicate（為 nil 時視為一般錯誤）
// - 其他                  → ErrRepository（附上原始訊息）
func mapError(err error, notFound, duplicate *loyalty.DomainError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	if duplicate != nil && isUniqueViolation(err) {
		return duplicate.WithContext("database_error", err.Error())
	}
	return loyalty.ErrRepository.WithContext("database_error", err.Error())
}
