package persistence

import (
	"gorm.io/datatypes"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// ===========================
// Model → Domain
// ===========================
//
// 資料庫中的 ID 或數值不符合領域規則時返回 ErrRepository（資料損毀），
// 不會返回半成品的聚合。

func corrupted(table, id string, err error) error {
	return loyalty.ErrRepository.WithContext(
		"table", table,
		"id", id,
		"reason", err.Error(),
	)
}

func (m *CustomerModel) toDomain() (*loyalty.Customer, error) {
	id, err := loyalty.CustomerIDFromString(m.ID)
	if err != nil {
		return nil, corrupted("customers", m.ID, err)
	}
	token, err := loyalty.NewQRToken(m.QRToken)
	if err != nil {
		return nil, corrupted("customers", m.ID, err)
	}
	return &loyalty.Customer{
		ID:         id,
		AuthUserID: m.AuthUserID,
		Email:      m.Email,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		QRToken:    token,
		CreatedAt:  m.CreatedAt,
	}, nil
}

func (m *BusinessModel) toDomain() (*loyalty.Business, error) {
	id, err := loyalty.BusinessIDFromString(m.ID)
	if err != nil {
		return nil, corrupted("businesses", m.ID, err)
	}
	return &loyalty.Business{
		ID:         id,
		Name:       m.Name,
		CategoryID: m.CategoryID,
		CreatedAt:  m.CreatedAt,
	}, nil
}

func (m *BusinessOperatorModel) toDomain() (*loyalty.BusinessOperator, error) {
	id, err := loyalty.OperatorIDFromString(m.ID)
	if err != nil {
		return nil, corrupted("business_operators", m.ID, err)
	}
	businessID, err := loyalty.BusinessIDFromString(m.BusinessID)
	if err != nil {
		return nil, corrupted("business_operators", m.ID, err)
	}
	return &loyalty.BusinessOperator{
		ID:         id,
		BusinessID: businessID,
		AuthUserID: m.AuthUserID,
		Email:      m.Email,
		IsAdmin:    m.IsAdmin,
		CreatedAt:  m.CreatedAt,
	}, nil
}

func (m *RewardModel) toDomain() (*loyalty.Reward, error) {
	id, err := loyalty.RewardIDFromString(m.ID)
	if err != nil {
		return nil, corrupted("rewards", m.ID, err)
	}
	businessID, err := loyalty.BusinessIDFromString(m.BusinessID)
	if err != nil {
		return nil, corrupted("rewards", m.ID, err)
	}
	kind, err := loyalty.ParseRewardKind(m.RewardType)
	if err != nil {
		return nil, corrupted("rewards", m.ID, err)
	}
	var metadata map[string]interface{}
	if m.Metadata != nil {
		metadata = map[string]interface{}(m.Metadata)
	}
	reward, err := loyalty.ReconstructReward(id, businessID, m.Name, kind, m.CostPoints, m.IsActive, m.CreatedAt, metadata)
	if err != nil {
		return nil, corrupted("rewards", m.ID, err)
	}
	return reward, nil
}

func (m *CustomerBalanceModel) toDomain() (*loyalty.CustomerBalance, error) {
	id, err := loyalty.BalanceIDFromString(m.ID)
	if err != nil {
		return nil, corrupted("customer_balances", m.ID, err)
	}
	customerID, err := loyalty.CustomerIDFromString(m.CustomerID)
	if err != nil {
		return nil, corrupted("customer_balances", m.ID, err)
	}
	rewardID, err := loyalty.RewardIDFromString(m.RewardID)
	if err != nil {
		return nil, corrupted("customer_balances", m.ID, err)
	}
	return loyalty.ReconstructCustomerBalance(id, customerID, rewardID, m.Balance, m.Version, m.LastUpdated)
}

func (m *ScanEventModel) toDomain() (*loyalty.ScanEvent, error) {
	id, err := loyalty.ScanEventIDFromString(m.ID)
	if err != nil {
		return nil, corrupted("scan_events", m.ID, err)
	}
	customerID, err := loyalty.CustomerIDFromString(m.CustomerID)
	if err != nil {
		return nil, corrupted("scan_events", m.ID, err)
	}
	rewardID, err := loyalty.RewardIDFromString(m.RewardID)
	if err != nil {
		return nil, corrupted("scan_events", m.ID, err)
	}
	operatorID, err := loyalty.OperatorIDFromString(m.OperatorID)
	if err != nil {
		return nil, corrupted("scan_events", m.ID, err)
	}
	token, err := loyalty.NewQRToken(m.QRToken)
	if err != nil {
		return nil, corrupted("scan_events", m.ID, err)
	}
	return loyalty.ReconstructScanEvent(id, customerID, rewardID, operatorID, token, m.PointsChange, m.ScannedAt), nil
}

func (m *RewardRedemptionModel) toDomain() (*loyalty.RewardRedemption, error) {
	id, err := loyalty.RedemptionIDFromString(m.ID)
	if err != nil {
		return nil, corrupted("reward_redemptions", m.ID, err)
	}
	customerID, err := loyalty.CustomerIDFromString(m.CustomerID)
	if err != nil {
		return nil, corrupted("reward_redemptions", m.ID, err)
	}
	rewardID, err := loyalty.RewardIDFromString(m.RewardID)
	if err != nil {
		return nil, corrupted("reward_redemptions", m.ID, err)
	}
	var operatorID loyalty.OperatorID
	if m.OperatorID != nil {
		operatorID, err = loyalty.OperatorIDFromString(*m.OperatorID)
		if err != nil {
			return nil, corrupted("reward_redemptions", m.ID, err)
		}
	}
	return loyalty.ReconstructRewardRedemption(id, customerID, rewardID, operatorID, m.RedeemedAt), nil
}

// ===========================
// Domain → Model
// ===========================

func toRewardModel(r *loyalty.Reward) *RewardModel {
	var metadata datatypes.JSONMap
	if r.Metadata() != nil {
		metadata = datatypes.JSONMap(r.Metadata())
	}
	return &RewardModel{
		ID:         r.ID().String(),
		BusinessID: r.BusinessID().String(),
		Name:       r.Name(),
		RewardType: r.Kind().Tag(),
		CostPoints: r.CostPoints().Value(),
		IsActive:   r.IsActive(),
		Metadata:   metadata,
		CreatedAt:  r.CreatedAt(),
	}
}

func toBalanceModel(b *loyalty.CustomerBalance) *CustomerBalanceModel {
	return &CustomerBalanceModel{
		ID:          b.ID().String(),
		CustomerID:  b.CustomerID().String(),
		RewardID:    b.RewardID().String(),
		Balance:     b.Balance().Value(),
		Version:     1,
		LastUpdated: b.LastUpdated(),
	}
}

func toScanEventModel(e *loyalty.ScanEvent) *ScanEventModel {
	return &ScanEventModel{
		ID:           e.ID().String(),
		CustomerID:   e.CustomerID().String(),
		RewardID:     e.RewardID().String(),
		OperatorID:   e.OperatorID().String(),
		QRToken:      e.QRToken().String(),
		PointsChange: e.PointsChange(),
		ScannedAt:    e.ScannedAt(),
	}
}

func toRedemptionModel(r *loyalty.RewardRedemption) *RewardRedemptionModel {
	m := &RewardRedemptionModel{
		ID:         r.ID().String(),
		CustomerID: r.CustomerID().String(),
		RewardID:   r.RewardID().String(),
		RedeemedAt: r.RedeemedAt(),
	}
	if r.HasOperator() {
		op := r.OperatorID().String()
		m.OperatorID = &op
	}
	return m
}
