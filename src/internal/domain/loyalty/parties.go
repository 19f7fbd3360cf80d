package loyalty

import "time"

// ===========================
// 唯讀參與者
// ===========================
//
// Customer、Business、BusinessOperator 由其他流程（註冊、後台）建立，
// 交易引擎只讀取，不修改。

// Customer 顧客
type Customer struct {
	ID         CustomerID
	AuthUserID string
	Email      string
	FirstName  string
	LastName   string
	QRToken    QRToken
	CreatedAt  time.Time
}

// DisplayName 顯示名稱
func (c *Customer) DisplayName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}

// Business 商家（租戶）
type Business struct {
	ID         BusinessID
	Name       string
	CategoryID string
	CreatedAt  time.Time
}

// BusinessOperator 代表商家操作的使用者
type BusinessOperator struct {
	ID         OperatorID
	BusinessID BusinessID
	AuthUserID string
	Email      string
	IsAdmin    bool
	CreatedAt  time.Time
}

// BelongsTo 操作員是否屬於指定商家
func (o *BusinessOperator) BelongsTo(businessID BusinessID) bool {
	return o.BusinessID.Equals(businessID)
}
