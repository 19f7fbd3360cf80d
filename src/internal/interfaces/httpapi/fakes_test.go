package httpapi_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackyeh168/saveforperks/src/internal/application/reward"
	"github.com/jackyeh168/saveforperks/src/internal/application/scan"
	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/internal/infrastructure/idempotency"
)

const (
	businessID   = "6f1c2a7e-8a41-4b8e-9d57-1f3a0c2b9e01"
	operatorID   = "0b7d9c52-3e1f-4a6b-8c2d-5e4f3a2b1c0d"
	rewardID     = "a3e5c7d9-1b2f-4c6e-8a0b-2d4f6a8c0e1f"
	scanEventID  = "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f"
	validToken   = "valid-token"
	subject      = "auth0|barista-1"
	otherToken   = "other-token"
	otherSubject = "auth0|barista-2"
	qrCodeValue  = "qr-alice-0001"
	redemptionID = "e9f8a7b6-c5d4-4e3f-a2b1-0c9d8e7f6a5b"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// fakeVerifier 只接受 validToken 與 otherToken
type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (identity.Caller, error) {
	switch token {
	case validToken:
		return identity.NewCaller(subject, "barista@cafe.test"), nil
	case otherToken:
		return identity.NewCaller(otherSubject, "barista2@cafe.test"), nil
	default:
		return identity.Anonymous(), errors.New("bad token")
	}
}

// fakeScanService 記錄呼叫並返回預設結果
type fakeScanService struct {
	mu sync.Mutex

	Err error

	// AuthErr AuthorizeOperator 對已驗證呼叫者返回的錯誤
	AuthErr error

	// OnProcess ProcessScan 返回前呼叫（模擬客戶端在處理中斷線）
	OnProcess func()

	AuthorizeCalls int
	ProcessCalls   []scan.ProcessScanCommand
	Callers        []identity.Caller
	BalanceQuery   scan.GetBalanceQuery
	EventQuery     scan.GetScanEventQuery
	RedeemQuery    scan.GetRedemptionQuery
}

func (f *fakeScanService) AuthorizeOperator(_ context.Context, caller identity.Caller, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AuthorizeCalls++
	if !caller.IsAuthenticated() {
		return loyalty.ErrUnauthenticated
	}
	return f.AuthErr
}

func (f *fakeScanService) ProcessScan(_ context.Context, caller identity.Caller, cmd scan.ProcessScanCommand) (*scan.ScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProcessCalls = append(f.ProcessCalls, cmd)
	f.Callers = append(f.Callers, caller)
	if f.OnProcess != nil {
		f.OnProcess()
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return &scan.ScanResult{
		ScanEvent: scan.ScanEventInfo{
			ID:           scanEventID,
			RewardID:     cmd.RewardID,
			OperatorID:   cmd.OperatorID,
			QRToken:      cmd.QRToken,
			PointsChange: cmd.PointsToAdd,
			ScannedAt:    fixedNow,
		},
		CustomerName:        "Alice Chen",
		CurrentBalance:      cmd.PointsToAdd,
		NumRewardsAvailable: 0,
	}, nil
}

func (f *fakeScanService) GetBalance(_ context.Context, caller identity.Caller, q scan.GetBalanceQuery) (*scan.BalanceInfo, error) {
	f.BalanceQuery = q
	f.Callers = append(f.Callers, caller)
	if f.Err != nil {
		return nil, f.Err
	}
	return &scan.BalanceInfo{QRToken: q.QRToken, CustomerName: "Alice Chen", CurrentBalance: 7, RewardAvailable: true, NumRewardsAvailable: 1}, nil
}

func (f *fakeScanService) GetScanEvent(_ context.Context, _ identity.Caller, q scan.GetScanEventQuery) (*scan.ScanEventInfo, error) {
	f.EventQuery = q
	if f.Err != nil {
		return nil, f.Err
	}
	return &scan.ScanEventInfo{ID: q.ScanEventID, RewardID: q.RewardID, PointsChange: 2, ScannedAt: fixedNow}, nil
}

func (f *fakeScanService) GetRedemption(_ context.Context, _ identity.Caller, q scan.GetRedemptionQuery) (*scan.RedemptionInfo, error) {
	f.RedeemQuery = q
	if f.Err != nil {
		return nil, f.Err
	}
	return &scan.RedemptionInfo{ID: q.RedemptionID, RewardID: q.RewardID, RedeemedAt: fixedNow}, nil
}

// fakeRewardCreator 建立獎勵
type fakeRewardCreator struct {
	Err     error
	Command reward.CreateRewardCommand
}

func (f *fakeRewardCreator) Execute(_ context.Context, _ identity.Caller, cmd reward.CreateRewardCommand) (*reward.CreateRewardResult, error) {
	f.Command = cmd
	if f.Err != nil {
		return nil, f.Err
	}
	return &reward.CreateRewardResult{
		ID:         rewardID,
		BusinessID: cmd.BusinessID,
		Name:       cmd.Name,
		Type:       cmd.Type,
		CostPoints: cmd.CostPoints,
		IsActive:   true,
		CreatedAt:  fixedNow,
	}, nil
}

// recordingStore 記錄 Complete/Release 收到的 context 狀態
type recordingStore struct {
	*idempotency.Store

	mu             sync.Mutex
	CompleteCtxErr []error
	ReleaseCtxErr  []error
}

func (r *recordingStore) Complete(ctx context.Context, scope, key string, resp idempotency.Response) error {
	r.mu.Lock()
	r.CompleteCtxErr = append(r.CompleteCtxErr, ctx.Err())
	r.mu.Unlock()
	return r.Store.Complete(ctx, scope, key, resp)
}

func (r *recordingStore) Release(ctx context.Context, scope, key string) error {
	r.mu.Lock()
	r.ReleaseCtxErr = append(r.ReleaseCtxErr, ctx.Err())
	r.mu.Unlock()
	return r.Store.Release(ctx, scope, key)
}
