package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// AuthorizationGate 確認呼叫者就是其聲稱的商家操作員
//
// 純讀取。操作員不存在與身分不符對外都是 ErrUnauthorized。
type AuthorizationGate struct {
	operators loyalty.OperatorRepository
}

// NewAuthorizationGate 建立授權檢查
func NewAuthorizationGate(operators loyalty.OperatorRepository) *AuthorizationGate {
	return &AuthorizationGate{operators: operators}
}

// Authorize 返回已驗證的操作員
func (g *AuthorizationGate) Authorize(ctx context.Context, caller identity.Caller, operatorID string) (*loyalty.BusinessOperator, error) {
	if !caller.IsAuthenticated() {
		logger.Warn("authorization failed: caller is not authenticated", "operator_id", operatorID)
		return nil, loyalty.ErrUnauthenticated
	}

	id, err := loyalty.OperatorIDFromString(operatorID)
	if err != nil {
		logger.Warn("authorization failed: malformed operator id", "operator_id", operatorID, "subject", caller.Subject())
		return nil, loyalty.ErrUnauthorized
	}

	operator, err := g.operators.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, loyalty.ErrOperatorNotFound) {
			logger.Warn("authorization failed: operator not found", "operator_id", operatorID, "subject", caller.Subject())
			return nil, loyalty.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load operator: %w", err)
	}

	if !caller.Matches(operator.AuthUserID) {
		logger.Warn("authorization failed: subject does not match operator",
			"operator_id", operatorID,
			"subject", caller.Subject(),
		)
		return nil, loyalty.ErrUnauthorized
	}

	return operator, nil
}
