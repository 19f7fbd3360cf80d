package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// ScanInput 交易驗證的輸入（獎勵已通過租戶檢查）
type ScanInput struct {
	QRToken     string
	RewardID    loyalty.RewardID
	PointsToAdd int
	ClaimCount  int
}

// ValidatedScan 驗證通過的掃描
type ValidatedScan struct {
	Customer    *loyalty.Customer
	Reward      *loyalty.Reward
	QRToken     loyalty.QRToken
	PointsToAdd loyalty.PointsAmount
	ClaimCount  loyalty.ClaimCount
	// Balance 為 nil 表示顧客尚未在此獎勵下累積過點數
	Balance *loyalty.CustomerBalance
}

// TransactionValidator 解析顧客、獎勵與餘額，並確認兌換可以成立
//
// 這裡的餘額檢查是提早失敗用的快照；真正的扣點由 Mutator 在事務中
// 鎖定餘額後重新檢查。
type TransactionValidator struct {
	customers loyalty.CustomerRepository
	rewards   loyalty.RewardRepository
	balances  loyalty.BalanceRepository
}

// NewTransactionValidator 建立交易驗證
func NewTransactionValidator(
	customers loyalty.CustomerRepository,
	rewards loyalty.RewardRepository,
	balances loyalty.BalanceRepository,
) *TransactionValidator {
	return &TransactionValidator{
		customers: customers,
		rewards:   rewards,
		balances:  balances,
	}
}

// ValidateScan 驗證一次掃描
//
// 順序：QR → 顧客 → 獎勵 → 餘額 → 兌換份數與餘額 → 累積點數。
// 顧客或獎勵查無資料時返回同一個 ErrInvalidQROrReward。
func (v *TransactionValidator) ValidateScan(ctx context.Context, in ScanInput) (*ValidatedScan, error) {
	customer, reward, token, err := v.Resolve(ctx, in.QRToken, in.RewardID)
	if err != nil {
		return nil, err
	}

	balance, err := v.LoadBalance(ctx, customer.ID, reward.ID())
	if err != nil {
		return nil, err
	}

	count, err := loyalty.NewClaimCount(in.ClaimCount)
	if err != nil {
		return nil, err
	}
	if err := CheckClaim(reward, balance, count); err != nil {
		logger.Info("scan rejected: claim not satisfiable",
			"customer_id", customer.ID.String(),
			"reward_id", reward.ID().String(),
			"claim_count", count.Value(),
		)
		return nil, err
	}

	points, err := loyalty.NewPointsToAdd(in.PointsToAdd, !count.IsZero())
	if err != nil {
		return nil, err
	}

	return &ValidatedScan{
		Customer:    customer,
		Reward:      reward,
		QRToken:     token,
		PointsToAdd: points,
		ClaimCount:  count,
		Balance:     balance,
	}, nil
}

// Resolve 以 QR code 找顧客、以 ID 找獎勵
func (v *TransactionValidator) Resolve(ctx context.Context, qrToken string, rewardID loyalty.RewardID) (*loyalty.Customer, *loyalty.Reward, loyalty.QRToken, error) {
	token, err := loyalty.NewQRToken(qrToken)
	if err != nil {
		return nil, nil, loyalty.QRToken{}, err
	}

	customer, err := v.customers.FindByQRToken(ctx, token)
	if err != nil {
		if errors.Is(err, loyalty.ErrCustomerNotFound) {
			logger.Info("scan rejected: unknown qr token", "reward_id", rewardID.String())
			return nil, nil, loyalty.QRToken{}, loyalty.ErrInvalidQROrReward
		}
		return nil, nil, loyalty.QRToken{}, fmt.Errorf("failed to load customer: %w", err)
	}

	reward, err := v.rewards.FindByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, loyalty.ErrRewardNotFound) {
			logger.Info("scan rejected: reward disappeared", "reward_id", rewardID.String())
			return nil, nil, loyalty.QRToken{}, loyalty.ErrInvalidQROrReward
		}
		return nil, nil, loyalty.QRToken{}, fmt.Errorf("failed to load reward: %w", err)
	}

	return customer, reward, token, nil
}

// LoadBalance 讀取餘額；尚無紀錄時返回 nil, nil
func (v *TransactionValidator) LoadBalance(ctx context.Context, customerID loyalty.CustomerID, rewardID loyalty.RewardID) (*loyalty.CustomerBalance, error) {
	balance, err := v.balances.FindByCustomerAndReward(ctx, customerID, rewardID)
	if err != nil {
		if errors.Is(err, loyalty.ErrBalanceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	return balance, nil
}

// CheckClaim 兌換 count 份是否可以成立
// balance 為 nil 表示尚無紀錄
func CheckClaim(reward *loyalty.Reward, balance *loyalty.CustomerBalance, count loyalty.ClaimCount) error {
	if count.IsZero() {
		return nil
	}
	if balance == nil {
		return loyalty.ErrNoPointsYet
	}
	required := reward.CostFor(count)
	if balance.Balance().LessThan(required) {
		return loyalty.NewInsufficientPointsError(required, balance.Balance())
	}
	return nil
}
