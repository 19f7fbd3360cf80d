package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// MutationInput Mutator 的輸入（已通過授權、租戶與交易驗證）
type MutationInput struct {
	Customer    *loyalty.Customer
	Reward      *loyalty.Reward
	OperatorID  loyalty.OperatorID
	QRToken     loyalty.QRToken
	PointsToAdd loyalty.PointsAmount
	ClaimCount  loyalty.ClaimCount
}

// MutationResult 已提交的變更
type MutationResult struct {
	Balance     *loyalty.CustomerBalance
	ScanEvent   *loyalty.ScanEvent
	Redemptions []*loyalty.RewardRedemption
	Deducted    loyalty.PointsAmount

	events []shared.DomainEvent
}

// BalanceRedemptionMutator 在單一事務中累積點數、兌換獎勵、寫入掃描事件
//
// 事務內以 FOR UPDATE 重新讀取餘額並重新檢查兌換，寫回時以 version 做
// compare-and-swap。衝突（ErrConcurrentUpdate）時整個事務以指數退避重試。
//
// 對外錯誤只有兩種：領域驗證錯誤（例如 ErrInsufficientPoints）原樣返回，
// 其他一律轉為 ErrTransactionFailed。
type BalanceRedemptionMutator struct {
	txManager   shared.TransactionManager
	balances    loyalty.BalanceRepository
	scans       loyalty.ScanEventRepository
	redemptions loyalty.RedemptionRepository
	publisher   shared.EventPublisher

	maxAttempts int
	baseDelay   time.Duration
	clock       func() time.Time
}

// NewBalanceRedemptionMutator 建立 Mutator
func NewBalanceRedemptionMutator(
	txManager shared.TransactionManager,
	balances loyalty.BalanceRepository,
	scans loyalty.ScanEventRepository,
	redemptions loyalty.RedemptionRepository,
	publisher shared.EventPublisher,
	maxAttempts int,
	baseDelay time.Duration,
	clock func() time.Time,
) *BalanceRedemptionMutator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = time.Millisecond
	}
	return &BalanceRedemptionMutator{
		txManager:   txManager,
		balances:    balances,
		scans:       scans,
		redemptions: redemptions,
		publisher:   publisher,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		clock:       clock,
	}
}

// Apply 執行並提交變更，成功後發布領域事件
func (m *BalanceRedemptionMutator) Apply(ctx context.Context, in MutationInput) (*MutationResult, error) {
	backoff := retry.WithMaxRetries(uint64(m.maxAttempts-1), retry.NewExponential(m.baseDelay))

	attempt := 0
	var result *MutationResult
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		r, err := m.applyOnce(ctx, in)
		if err != nil {
			if errors.Is(err, loyalty.ErrConcurrentUpdate) {
				logger.Info("scan transaction conflict, retrying",
					"customer_id", in.Customer.ID.String(),
					"reward_id", in.Reward.ID().String(),
					"attempt", attempt,
				)
				return retry.RetryableError(err)
			}
			return err
		}
		result = r
		return nil
	})

	if err != nil {
		if de, ok := loyalty.AsDomainError(err); ok && de.Kind.IsClientFacing() {
			return nil, err
		}
		logger.Error("scan transaction failed",
			"customer_id", in.Customer.ID.String(),
			"reward_id", in.Reward.ID().String(),
			"operator_id", in.OperatorID.String(),
			"attempts", attempt,
			"error", err,
		)
		return nil, loyalty.ErrTransactionFailed
	}

	m.publish(ctx, result.events)
	return result, nil
}

func (m *BalanceRedemptionMutator) applyOnce(ctx context.Context, in MutationInput) (*MutationResult, error) {
	var result *MutationResult

	err := m.txManager.InTransaction(ctx, func(txCtx context.Context) error {
		now := m.clock()
		customerID := in.Customer.ID
		rewardID := in.Reward.ID()

		// 1. 鎖定並重新讀取餘額
		balance, err := m.balances.FindByCustomerAndRewardForUpdate(txCtx, customerID, rewardID)
		if err != nil && !errors.Is(err, loyalty.ErrBalanceNotFound) {
			return fmt.Errorf("failed to lock balance: %w", err)
		}

		// 2. 累積
		if balance == nil {
			if !in.ClaimCount.IsZero() {
				return loyalty.ErrNoPointsYet
			}
			balance = loyalty.OpenCustomerBalance(customerID, rewardID, in.PointsToAdd, now)
		} else {
			balance.Accrue(in.PointsToAdd, now)
		}

		// 3. 兌換
		deducted := loyalty.ZeroPoints()
		var redemptions []*loyalty.RewardRedemption
		if !in.ClaimCount.IsZero() {
			deducted, err = balance.Claim(in.Reward, in.ClaimCount, now)
			if err != nil {
				return err
			}
			redemptions = loyalty.NewRewardRedemptions(customerID, rewardID, in.OperatorID, in.ClaimCount, now)
		}

		// 4. 寫入
		if balance.IsPersisted() {
			err = m.balances.Update(txCtx, balance)
		} else {
			err = m.balances.Save(txCtx, balance)
		}
		if err != nil {
			return fmt.Errorf("failed to persist balance: %w", err)
		}

		if len(redemptions) > 0 {
			if err := m.redemptions.SaveAll(txCtx, redemptions); err != nil {
				return fmt.Errorf("failed to persist redemptions: %w", err)
			}
		}

		scanEvent := loyalty.RecordScan(customerID, rewardID, in.OperatorID, in.QRToken, in.PointsToAdd, now)
		if err := m.scans.Save(txCtx, scanEvent); err != nil {
			return fmt.Errorf("failed to persist scan event: %w", err)
		}

		events := balance.PullEvents()
		events = append(events, loyalty.NewScanRecordedEvent(scanEvent))

		result = &MutationResult{
			Balance:     balance,
			ScanEvent:   scanEvent,
			Redemptions: redemptions,
			Deducted:    deducted,
			events:      events,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// publish 事件發布失敗只記錄，不影響已提交的交易
func (m *BalanceRedemptionMutator) publish(ctx context.Context, events []shared.DomainEvent) {
	if m.publisher == nil || len(events) == 0 {
		return
	}
	if err := m.publisher.PublishBatch(ctx, events); err != nil {
		logger.Warn("failed to publish loyalty events", "count", len(events), "error", err)
	}
}
