package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
)

// ===========================
// 記憶體資料庫
// ===========================

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type balanceRow struct {
	id          loyalty.BalanceID
	customerID  loyalty.CustomerID
	rewardID    loyalty.RewardID
	balance     int
	version     int
	lastUpdated time.Time
}

// memoryStore 所有 Mock Repository 共用的資料；MockTransactionManager 以快照實作回滾
type memoryStore struct {
	mu          sync.Mutex
	customers   map[string]*loyalty.Customer // key: QR token
	operators   map[string]*loyalty.BusinessOperator
	rewards     map[string]*loyalty.Reward
	balances    map[string]balanceRow // key: customerID|rewardID
	scans       map[string]*loyalty.ScanEvent
	redemptions map[string]*loyalty.RewardRedemption
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		customers:   make(map[string]*loyalty.Customer),
		operators:   make(map[string]*loyalty.BusinessOperator),
		rewards:     make(map[string]*loyalty.Reward),
		balances:    make(map[string]balanceRow),
		scans:       make(map[string]*loyalty.ScanEvent),
		redemptions: make(map[string]*loyalty.RewardRedemption),
	}
}

type storeSnapshot struct {
	balances    map[string]balanceRow
	scans       map[string]*loyalty.ScanEvent
	redemptions map[string]*loyalty.RewardRedemption
}

func (s *memoryStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		balances:    make(map[string]balanceRow, len(s.balances)),
		scans:       make(map[string]*loyalty.ScanEvent, len(s.scans)),
		redemptions: make(map[string]*loyalty.RewardRedemption, len(s.redemptions)),
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.scans {
		snap.scans[k] = v
	}
	for k, v := range s.redemptions {
		snap.redemptions[k] = v
	}
	return snap
}

func (s *memoryStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = snap.balances
	s.scans = snap.scans
	s.redemptions = snap.redemptions
}

func balanceKey(customerID loyalty.CustomerID, rewardID loyalty.RewardID) string {
	return customerID.String() + "|" + rewardID.String()
}

// ===========================
// Mock Repositories
// ===========================

type MockCustomerRepository struct {
	store *memoryStore
	Err   error
}

func (r *MockCustomerRepository) FindByQRToken(_ context.Context, token loyalty.QRToken) (*loyalty.Customer, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.customers[token.String()]
	if !ok {
		return nil, loyalty.ErrCustomerNotFound
	}
	return c, nil
}

type MockOperatorRepository struct {
	store         *memoryStore
	Err           error
	FindCallCount int
}

func (r *MockOperatorRepository) FindByID(_ context.Context, id loyalty.OperatorID) (*loyalty.BusinessOperator, error) {
	r.FindCallCount++
	if r.Err != nil {
		return nil, r.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	op, ok := r.store.operators[id.String()]
	if !ok {
		return nil, loyalty.ErrOperatorNotFound
	}
	return op, nil
}

type MockRewardRepository struct {
	store *memoryStore
	Err   error
}

func (r *MockRewardRepository) FindByID(_ context.Context, id loyalty.RewardID) (*loyalty.Reward, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	reward, ok := r.store.rewards[id.String()]
	if !ok {
		return nil, loyalty.ErrRewardNotFound
	}
	return reward, nil
}

func (r *MockRewardRepository) FindByBusinessID(_ context.Context, businessID loyalty.BusinessID) (*loyalty.Reward, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, reward := range r.store.rewards {
		if reward.BelongsTo(businessID) {
			return reward, nil
		}
	}
	return nil, loyalty.ErrRewardNotFound
}

func (r *MockRewardRepository) Save(_ context.Context, reward *loyalty.Reward) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.rewards[reward.ID().String()] = reward
	return nil
}

// MockBalanceRepository 以 version 做 compare-and-swap
type MockBalanceRepository struct {
	store *memoryStore

	// UpdateConflicts 接下來幾次 Update 強制返回 ErrConcurrentUpdate
	UpdateConflicts int
	// UpdateErr 非 nil 時 Update 一律失敗
	UpdateErr error

	LockCallCount   int
	SaveCallCount   int
	UpdateCallCount int
}

func (r *MockBalanceRepository) FindByCustomerAndReward(_ context.Context, customerID loyalty.CustomerID, rewardID loyalty.RewardID) (*loyalty.CustomerBalance, error) {
	return r.load(customerID, rewardID)
}

func (r *MockBalanceRepository) FindByCustomerAndRewardForUpdate(_ context.Context, customerID loyalty.CustomerID, rewardID loyalty.RewardID) (*loyalty.CustomerBalance, error) {
	r.LockCallCount++
	return r.load(customerID, rewardID)
}

func (r *MockBalanceRepository) load(customerID loyalty.CustomerID, rewardID loyalty.RewardID) (*loyalty.CustomerBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.balances[balanceKey(customerID, rewardID)]
	if !ok {
		return nil, loyalty.ErrBalanceNotFound
	}
	return loyalty.ReconstructCustomerBalance(row.id, row.customerID, row.rewardID, row.balance, row.version, row.lastUpdated)
}

func (r *MockBalanceRepository) Save(_ context.Context, b *loyalty.CustomerBalance) error {
	r.SaveCallCount++
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := balanceKey(b.CustomerID(), b.RewardID())
	if _, exists := r.store.balances[key]; exists {
		return loyalty.ErrConcurrentUpdate
	}
	r.store.balances[key] = balanceRow{
		id:          b.ID(),
		customerID:  b.CustomerID(),
		rewardID:    b.RewardID(),
		balance:     b.Balance().Value(),
		version:     1,
		lastUpdated: b.LastUpdated(),
	}
	return nil
}

func (r *MockBalanceRepository) Update(_ context.Context, b *loyalty.CustomerBalance) error {
	r.UpdateCallCount++
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if r.UpdateConflicts > 0 {
		r.UpdateConflicts--
		return loyalty.ErrConcurrentUpdate
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := balanceKey(b.CustomerID(), b.RewardID())
	row, ok := r.store.balances[key]
	if !ok || row.version != b.Version() {
		return loyalty.ErrConcurrentUpdate
	}
	row.balance = b.Balance().Value()
	row.version++
	row.lastUpdated = b.LastUpdated()
	r.store.balances[key] = row
	return nil
}

type MockScanEventRepository struct {
	store         *memoryStore
	SaveErr       error
	SaveCallCount int
}

func (r *MockScanEventRepository) Save(_ context.Context, e *loyalty.ScanEvent) error {
	r.SaveCallCount++
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.scans[e.ID().String()] = e
	return nil
}

func (r *MockScanEventRepository) FindByRewardAndID(_ context.Context, rewardID loyalty.RewardID, id loyalty.ScanEventID) (*loyalty.ScanEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.scans[id.String()]
	if !ok || !e.RewardID().Equals(rewardID) {
		return nil, loyalty.ErrScanEventNotFound
	}
	return e, nil
}

type MockRedemptionRepository struct {
	store *memoryStore
}

func (r *MockRedemptionRepository) SaveAll(_ context.Context, redemptions []*loyalty.RewardRedemption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, red := range redemptions {
		r.store.redemptions[red.ID().String()] = red
	}
	return nil
}

func (r *MockRedemptionRepository) FindByRewardAndID(_ context.Context, rewardID loyalty.RewardID, id loyalty.RedemptionID) (*loyalty.RewardRedemption, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	red, ok := r.store.redemptions[id.String()]
	if !ok || !red.RewardID().Equals(rewardID) {
		return nil, loyalty.ErrRedemptionNotFound
	}
	return red, nil
}

// ===========================
// Mock TransactionManager
// ===========================

// MockTransactionManager 執行 fn；失敗（或 CommitErr）時把資料還原到事務開始前
type MockTransactionManager struct {
	store     *memoryStore
	CommitErr error
	// OnRollback 回滾後呼叫（模擬其他請求在此期間提交）
	OnRollback func()

	InTransactionCallCount int
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.InTransactionCallCount++
	snap := m.store.snapshot()
	err := fn(ctx)
	if err == nil {
		err = m.CommitErr
	}
	if err != nil {
		m.store.restore(snap)
		if m.OnRollback != nil {
			m.OnRollback()
		}
		return err
	}
	return nil
}

// ===========================
// Mock Publisher / Metrics
// ===========================

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	Err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e shared.DomainEvent) error {
	return p.PublishBatch(ctx, []shared.DomainEvent{e})
}

func (p *recordingPublisher) PublishBatch(_ context.Context, events []shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string][]string
	points   int
	claimed  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: make(map[string][]string)}
}

func (m *recordingMetrics) ObserveOperation(operation, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[operation] = append(m.outcomes[operation], outcome)
}

func (m *recordingMetrics) AddPointsAccrued(points int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points += points
}

func (m *recordingMetrics) AddRewardsClaimed(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimed += count
}

// ===========================
// 測試夾具
// ===========================

// fixture 一個商家、一位操作員、一個獎勵、一位顧客
type fixture struct {
	store       *memoryStore
	customers   *MockCustomerRepository
	operators   *MockOperatorRepository
	rewards     *MockRewardRepository
	balances    *MockBalanceRepository
	scans       *MockScanEventRepository
	redemptions *MockRedemptionRepository
	tx          *MockTransactionManager
	publisher   *recordingPublisher
	metrics     *recordingMetrics
	service     *Service

	businessID loyalty.BusinessID
	operator   *loyalty.BusinessOperator
	caller     identity.Caller
	reward     *loyalty.Reward
	customer   *loyalty.Customer

	// 另一個商家（租戶隔離測試用）
	otherBusinessID loyalty.BusinessID
	otherReward     *loyalty.Reward
}

func newFixture(t *testing.T, costPoints int) *fixture {
	t.Helper()
	f, err := buildFixture(costPoints)
	require.NoError(t, err)
	return f
}

func buildFixture(costPoints int) (*fixture, error) {
	store := newMemoryStore()
	f := &fixture{
		store:       store,
		customers:   &MockCustomerRepository{store: store},
		operators:   &MockOperatorRepository{store: store},
		rewards:     &MockRewardRepository{store: store},
		balances:    &MockBalanceRepository{store: store},
		scans:       &MockScanEventRepository{store: store},
		redemptions: &MockRedemptionRepository{store: store},
		tx:          &MockTransactionManager{store: store},
		publisher:   &recordingPublisher{},
		metrics:     newRecordingMetrics(),
	}

	f.businessID = loyalty.NewBusinessID()
	f.operator = &loyalty.BusinessOperator{
		ID:         loyalty.NewOperatorID(),
		BusinessID: f.businessID,
		AuthUserID: "auth0|barista-1",
		Email:      "barista@example.com",
		CreatedAt:  fixedNow,
	}
	store.operators[f.operator.ID.String()] = f.operator
	f.caller = identity.NewCaller(f.operator.AuthUserID, f.operator.Email)

	reward, err := loyalty.NewReward(f.businessID, "Free Coffee", loyalty.IncrementalPoints{}, costPoints, nil, fixedNow)
	if err != nil {
		return nil, err
	}
	f.reward = reward
	store.rewards[reward.ID().String()] = reward

	f.otherBusinessID = loyalty.NewBusinessID()
	other, err := loyalty.NewReward(f.otherBusinessID, "Free Bagel", loyalty.IncrementalPoints{}, 3, nil, fixedNow)
	if err != nil {
		return nil, err
	}
	f.otherReward = other
	store.rewards[other.ID().String()] = other

	token, err := loyalty.NewQRToken("qr-alice-0001")
	if err != nil {
		return nil, err
	}
	f.customer = &loyalty.Customer{
		ID:         loyalty.NewCustomerID(),
		AuthUserID: "auth0|alice",
		Email:      "alice@example.com",
		FirstName:  "Alice",
		LastName:   "Chen",
		QRToken:    token,
		CreatedAt:  fixedNow,
	}
	store.customers[token.String()] = f.customer

	f.service = NewService(f.dependencies(), Options{
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
		Clock:          func() time.Time { return fixedNow },
	})
	return f, nil
}

func (f *fixture) dependencies() Dependencies {
	return Dependencies{
		Customers:   f.customers,
		Operators:   f.operators,
		Rewards:     f.rewards,
		Balances:    f.balances,
		ScanEvents:  f.scans,
		Redemptions: f.redemptions,
		TxManager:   f.tx,
		Publisher:   f.publisher,
		Metrics:     f.metrics,
	}
}

// seedBalance 直接寫入已存在的餘額
func (f *fixture) seedBalance(points int) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.balances[balanceKey(f.customer.ID, f.reward.ID())] = balanceRow{
		id:          loyalty.NewBalanceID(),
		customerID:  f.customer.ID,
		rewardID:    f.reward.ID(),
		balance:     points,
		version:     1,
		lastUpdated: fixedNow.Add(-time.Hour),
	}
}

// storedBalance 目前的餘額；ok 為 false 表示尚無紀錄
func (f *fixture) storedBalance() (points int, ok bool) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	row, ok := f.store.balances[balanceKey(f.customer.ID, f.reward.ID())]
	return row.balance, ok
}

func (f *fixture) scanCount() int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return len(f.store.scans)
}

func (f *fixture) redemptionCount() int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return len(f.store.redemptions)
}

func (f *fixture) scanCommand(pointsToAdd, claimCount int) ProcessScanCommand {
	return ProcessScanCommand{
		BusinessID:  f.businessID.String(),
		OperatorID:  f.operator.ID.String(),
		QRToken:     f.customer.QRToken.String(),
		RewardID:    f.reward.ID().String(),
		PointsToAdd: pointsToAdd,
		ClaimCount:  claimCount,
	}
}

func (f *fixture) balanceQuery() GetBalanceQuery {
	return GetBalanceQuery{
		BusinessID: f.businessID.String(),
		OperatorID: f.operator.ID.String(),
		RewardID:   f.reward.ID().String(),
		QRToken:    f.customer.QRToken.String(),
	}
}

var errDatabaseDown = errors.New("connection refused")
