package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// 事件類型
const (
	EventTypeBalanceOpened  = "loyalty.balance_opened"
	EventTypePointsAccrued  = "loyalty.points_accrued"
	EventTypeRewardsClaimed = "loyalty.rewards_claimed"
	EventTypeScanRecorded   = "loyalty.scan_recorded"
)

// eventHeader 所有事件共用的識別欄位
type eventHeader struct {
	eventID     string
	aggregateID string
	occurredAt  time.Time
}

func newEventHeader(aggregateID string, occurredAt time.Time) eventHeader {
	return eventHeader{
		eventID:     uuid.New().String(),
		aggregateID: aggregateID,
		occurredAt:  occurredAt,
	}
}

func (h eventHeader) EventID() string       { return h.eventID }
func (h eventHeader) AggregateID() string   { return h.aggregateID }
func (h eventHeader) OccurredAt() time.Time { return h.occurredAt }

// ===========================
// BalanceOpened
// ===========================

// BalanceOpenedEvent 顧客第一次在某獎勵下累積點數
type BalanceOpenedEvent struct {
	eventHeader
	CustomerID CustomerID
	RewardID   RewardID
	Initial    PointsAmount
}

func (e *BalanceOpenedEvent) EventType() string { return EventTypeBalanceOpened }

func (e *BalanceOpenedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"customer_id": e.CustomerID.String(),
		"reward_id":   e.RewardID.String(),
		"initial":     e.Initial.Value(),
	}
}

// ===========================
// PointsAccrued
// ===========================

// PointsAccruedEvent 點數增加
type PointsAccruedEvent struct {
	eventHeader
	CustomerID CustomerID
	RewardID   RewardID
	Amount     PointsAmount
	NewBalance PointsAmount
}

func (e *PointsAccruedEvent) EventType() string { return EventTypePointsAccrued }

func (e *PointsAccruedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"customer_id": e.CustomerID.String(),
		"reward_id":   e.RewardID.String(),
		"amount":      e.Amount.Value(),
		"new_balance": e.NewBalance.Value(),
	}
}

// ===========================
// RewardsClaimed
// ===========================

// RewardsClaimedEvent 兌換獎勵並扣除點數
type RewardsClaimedEvent struct {
	eventHeader
	CustomerID CustomerID
	RewardID   RewardID
	Count      int
	Deducted   PointsAmount
	NewBalance PointsAmount
}

func (e *RewardsClaimedEvent) EventType() string { return EventTypeRewardsClaimed }

func (e *RewardsClaimedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"customer_id": e.CustomerID.String(),
		"reward_id":   e.RewardID.String(),
		"count":       e.Count,
		"deducted":    e.Deducted.Value(),
		"new_balance": e.NewBalance.Value(),
	}
}

// ===========================
// ScanRecorded
// ===========================

// ScanRecordedEvent 掃描事件已寫入
type ScanRecordedEvent struct {
	eventHeader
	ScanEventID  ScanEventID
	CustomerID   CustomerID
	RewardID     RewardID
	OperatorID   OperatorID
	PointsChange int
}

// NewScanRecordedEvent 由已寫入的掃描事件建立
func NewScanRecordedEvent(scan *ScanEvent) *ScanRecordedEvent {
	return &ScanRecordedEvent{
		eventHeader:  newEventHeader(scan.ID().String(), scan.ScannedAt()),
		ScanEventID:  scan.ID(),
		CustomerID:   scan.CustomerID(),
		RewardID:     scan.RewardID(),
		OperatorID:   scan.OperatorID(),
		PointsChange: scan.PointsChange(),
	}
}

func (e *ScanRecordedEvent) EventType() string { return EventTypeScanRecorded }

func (e *ScanRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"scan_event_id": e.ScanEventID.String(),
		"customer_id":   e.CustomerID.String(),
		"reward_id":     e.RewardID.String(),
		"operator_id":   e.OperatorID.String(),
		"points_change": e.PointsChange,
	}
}
