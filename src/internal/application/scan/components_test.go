package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// ===========================
// AuthorizationGate 測試
// ===========================

// Test 1: 身分相符
func TestAuthorizationGate_MatchingSubject(t *testing.T) {
	f := newFixture(t, 5)
	gate := NewAuthorizationGate(f.operators)

	operator, err := gate.Authorize(context.Background(), f.caller, f.operator.ID.String())

	require.NoError(t, err)
	assert.Equal(t, f.operator.ID, operator.ID)
}

// Test 2: 操作員查詢失敗（非 NotFound）保留原始錯誤供上層記錄
func TestAuthorizationGate_RepositoryError_Wrapped(t *testing.T) {
	f := newFixture(t, 5)
	f.operators.Err = errDatabaseDown
	gate := NewAuthorizationGate(f.operators)

	_, err := gate.Authorize(context.Background(), f.caller, f.operator.ID.String())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errDatabaseDown))
	_, isDomain := loyalty.AsDomainError(err)
	assert.False(t, isDomain)
}

// Test 3: email 相同但 subject 不同仍然拒絕
func TestAuthorizationGate_SameEmailDifferentSubject(t *testing.T) {
	f := newFixture(t, 5)
	gate := NewAuthorizationGate(f.operators)

	_, err := gate.Authorize(context.Background(), identity.NewCaller("google|123", f.operator.Email), f.operator.ID.String())

	assert.True(t, errors.Is(err, loyalty.ErrUnauthorized))
}

// ===========================
// TenantOwnershipValidator 測試
// ===========================

// Test 4: 格式錯誤的商家 ID 視為不屬於該商家
func TestTenantOwnership_MalformedBusinessID_Forbidden(t *testing.T) {
	f := newFixture(t, 5)
	v := NewTenantOwnershipValidator(f.rewards)

	_, err := v.Validate(context.Background(), f.operator, "business-1", f.reward.ID().String())

	assert.True(t, errors.Is(err, loyalty.ErrForbiddenBusiness))
}

// Test 5: 獎勵屬於其他商家與不存在，錯誤相同
func TestTenantOwnership_ForeignAndMissingReward_SameError(t *testing.T) {
	f := newFixture(t, 5)
	v := NewTenantOwnershipValidator(f.rewards)

	_, errForeign := v.ValidateReward(context.Background(), f.businessID, f.otherReward.ID().String())
	_, errMissing := v.ValidateReward(context.Background(), f.businessID, loyalty.NewRewardID().String())

	require.Error(t, errForeign)
	require.Error(t, errMissing)
	assert.Equal(t, errForeign.Error(), errMissing.Error())
	assert.True(t, errors.Is(errForeign, loyalty.ErrInvalidReward))
}

// Test 6: 正常情況返回獎勵
func TestTenantOwnership_Valid(t *testing.T) {
	f := newFixture(t, 5)
	v := NewTenantOwnershipValidator(f.rewards)

	reward, err := v.Validate(context.Background(), f.operator, f.businessID.String(), f.reward.ID().String())

	require.NoError(t, err)
	assert.Equal(t, f.reward.ID(), reward.ID())
}

// ===========================
// TransactionValidator 測試
// ===========================

// Test 7: CheckClaim 邊界
func TestCheckClaim(t *testing.T) {
	f := newFixture(t, 5)
	seeded := func(points int) *loyalty.CustomerBalance {
		b, err := loyalty.ReconstructCustomerBalance(loyalty.NewBalanceID(), f.customer.ID, f.reward.ID(), points, 1, fixedNow)
		require.NoError(t, err)
		return b
	}
	claim := func(n int) loyalty.ClaimCount {
		c, err := loyalty.NewClaimCount(n)
		require.NoError(t, err)
		return c
	}

	assert.NoError(t, CheckClaim(f.reward, nil, claim(0)))
	assert.NoError(t, CheckClaim(f.reward, seeded(10), claim(2)))
	assert.True(t, errors.Is(CheckClaim(f.reward, nil, claim(1)), loyalty.ErrNoPointsYet))
	assert.True(t, errors.Is(CheckClaim(f.reward, seeded(9), claim(2)), loyalty.ErrInsufficientPoints))
}

// Test 8: 驗證結果帶有餘額快照
func TestValidateScan_ReturnsSnapshot(t *testing.T) {
	f := newFixture(t, 5)
	f.seedBalance(8)
	v := NewTransactionValidator(f.customers, f.rewards, f.balances)

	validated, err := v.ValidateScan(context.Background(), ScanInput{
		QRToken:     "  qr-alice-0001  ",
		RewardID:    f.reward.ID(),
		PointsToAdd: 0,
		ClaimCount:  1,
	})

	require.NoError(t, err)
	require.NotNil(t, validated.Balance)
	assert.Equal(t, 8, validated.Balance.Balance().Value())
	assert.True(t, validated.PointsToAdd.IsZero())
	assert.Equal(t, 1, validated.ClaimCount.Value())
	assert.Equal(t, f.customer.ID, validated.Customer.ID)
}
