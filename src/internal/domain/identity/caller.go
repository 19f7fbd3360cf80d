package identity

import "strings"

// Caller 已驗證的呼叫者身分
//
// 由傳輸層（JWT middleware）建立後，作為參數顯式傳入授權檢查；
// 不存放在全域或 request-scoped 的隱式狀態中。
type Caller struct {
	subject string
	email   string
}

// NewCaller 建立已驗證的呼叫者
// subject 為外部身分提供者的使用者 ID（JWT sub claim）
func NewCaller(subject, email string) Caller {
	return Caller{
		subject: strings.TrimSpace(subject),
		email:   strings.TrimSpace(email),
	}
}

// Anonymous 未驗證的呼叫者
func Anonymous() Caller {
	return Caller{}
}

// Subject 外部身分 ID
func (c Caller) Subject() string {
	return c.subject
}

// Email 呼叫者 email（可能為空）
func (c Caller) Email() string {
	return c.email
}

// IsAuthenticated 是否帶有身分
func (c Caller) IsAuthenticated() bool {
	return c.subject != ""
}

// Matches 判斷呼叫者是否為指定的外部身分
func (c Caller) Matches(subject string) bool {
	return c.IsAuthenticated() && c.subject == subject
}
