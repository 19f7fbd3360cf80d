package loyalty

import (
	"time"

	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
)

// ===========================
// CustomerBalance 聚合根
// ===========================

// CustomerBalance 顧客在某個獎勵下的點數餘額
//
// 不變條件：
// - balance >= 0（PointsAmount 保證）
// - 每個 (customer, reward) 只有一筆
//
// version 是載入時的版本號，Repository 以 version 做 compare-and-swap。
type CustomerBalance struct {
	id          BalanceID
	customerID  CustomerID
	rewardID    RewardID
	balance     PointsAmount
	version     int
	lastUpdated time.Time
	persisted   bool

	events []shared.DomainEvent
}

// OpenCustomerBalance 第一次掃描時建立餘額紀錄
func OpenCustomerBalance(customerID CustomerID, rewardID RewardID, initial PointsAmount, now time.Time) *CustomerBalance {
	b := &CustomerBalance{
		id:          NewBalanceID(),
		customerID:  customerID,
		rewardID:    rewardID,
		balance:     initial,
		version:     0,
		lastUpdated: now,
	}
	b.addEvent(&BalanceOpenedEvent{
		eventHeader: newEventHeader(b.id.String(), now),
		CustomerID:  customerID,
		RewardID:    rewardID,
		Initial:     initial,
	})
	return b
}

// ReconstructCustomerBalance 從持久化資料重建
// 儲存的餘額為負數時返回 ErrCorruptedBalance
func ReconstructCustomerBalance(
	id BalanceID,
	customerID CustomerID,
	rewardID RewardID,
	balance int,
	version int,
	lastUpdated time.Time,
) (*CustomerBalance, error) {
	amount, err := NewPointsAmount(balance)
	if err != nil {
		return nil, ErrCorruptedBalance.WithContext(
			"balance_id", id.String(),
			"balance", balance,
		)
	}
	return &CustomerBalance{
		id:          id,
		customerID:  customerID,
		rewardID:    rewardID,
		balance:     amount,
		version:     version,
		lastUpdated: lastUpdated,
		persisted:   true,
	}, nil
}

// ===========================
// 查詢方法
// ===========================

func (b *CustomerBalance) ID() BalanceID          { return b.id }
func (b *CustomerBalance) CustomerID() CustomerID { return b.customerID }
func (b *CustomerBalance) RewardID() RewardID     { return b.rewardID }
func (b *CustomerBalance) Balance() PointsAmount  { return b.balance }
func (b *CustomerBalance) Version() int           { return b.version }
func (b *CustomerBalance) LastUpdated() time.Time { return b.lastUpdated }

// IsPersisted 是否已存在於資料庫（決定 Save 或 Update）
func (b *CustomerBalance) IsPersisted() bool { return b.persisted }

// ===========================
// 命令方法
// ===========================

// Accrue 累積點數（0 點也接受：純兌換的掃描）
func (b *CustomerBalance) Accrue(amount PointsAmount, now time.Time) {
	if amount.IsZero() {
		return
	}
	b.balance = b.balance.Add(amount)
	b.lastUpdated = now
	b.addEvent(&PointsAccruedEvent{
		eventHeader: newEventHeader(b.id.String(), now),
		CustomerID:  b.customerID,
		RewardID:    b.rewardID,
		Amount:      amount,
		NewBalance:  b.balance,
	})
}

// Claim 兌換 count 份獎勵，返回扣除的點數
//
// 餘額不足時返回 ErrInsufficientPoints（訊息包含所需與可用點數），餘額不變。
func (b *CustomerBalance) Claim(reward *Reward, count ClaimCount, now time.Time) (PointsAmount, error) {
	if count.IsZero() {
		return ZeroPoints(), nil
	}
	if !reward.ID().Equals(b.rewardID) {
		return PointsAmount{}, ErrInvalidReward.WithContext(
			"balance_reward_id", b.rewardID.String(),
			"reward_id", reward.ID().String(),
		)
	}

	required := reward.CostFor(count)
	remaining, err := b.balance.Subtract(required)
	if err != nil {
		return PointsAmount{}, err
	}

	b.balance = remaining
	b.lastUpdated = now
	b.addEvent(&RewardsClaimedEvent{
		eventHeader: newEventHeader(b.id.String(), now),
		CustomerID:  b.customerID,
		RewardID:    b.rewardID,
		Count:       count.Value(),
		Deducted:    required,
		NewBalance:  remaining,
	})
	return required, nil
}

// ===========================
// 事件管理
// ===========================

func (b *CustomerBalance) addEvent(event shared.DomainEvent) {
	b.events = append(b.events, event)
}

// PullEvents 取出待發布事件並清空
func (b *CustomerBalance) PullEvents() []shared.DomainEvent {
	events := b.events
	b.events = nil
	return events
}
