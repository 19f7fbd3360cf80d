package loyalty

import "time"

// ScanEvent 一次成功的掃描紀錄（只新增，不修改）
type ScanEvent struct {
	id           ScanEventID
	customerID   CustomerID
	rewardID     RewardID
	operatorID   OperatorID
	qrToken      QRToken
	pointsChange int
	scannedAt    time.Time
}

// RecordScan 建立掃描事件；純兌換時 pointsChange 為 0
func RecordScan(
	customerID CustomerID,
	rewardID RewardID,
	operatorID OperatorID,
	qrToken QRToken,
	pointsChange PointsAmount,
	scannedAt time.Time,
) *ScanEvent {
	return &ScanEvent{
		id:           NewScanEventID(),
		customerID:   customerID,
		rewardID:     rewardID,
		operatorID:   operatorID,
		qrToken:      qrToken,
		pointsChange: pointsChange.Value(),
		scannedAt:    scannedAt,
	}
}

// ReconstructScanEvent 從持久化資料重建
func ReconstructScanEvent(
	id ScanEventID,
	customerID CustomerID,
	rewardID RewardID,
	operatorID OperatorID,
	qrToken QRToken,
	pointsChange int,
	scannedAt time.Time,
) *ScanEvent {
	return &ScanEvent{
		id:           id,
		customerID:   customerID,
		rewardID:     rewardID,
		operatorID:   operatorID,
		qrToken:      qrToken,
		pointsChange: pointsChange,
		scannedAt:    scannedAt,
	}
}

func (s *ScanEvent) ID() ScanEventID        { return s.id }
func (s *ScanEvent) CustomerID() CustomerID { return s.customerID }
func (s *ScanEvent) RewardID() RewardID     { return s.rewardID }
func (s *ScanEvent) OperatorID() OperatorID { return s.operatorID }
func (s *ScanEvent) QRToken() QRToken       { return s.qrToken }
func (s *ScanEvent) PointsChange() int      { return s.pointsChange }
func (s *ScanEvent) ScannedAt() time.Time   { return s.scannedAt }
