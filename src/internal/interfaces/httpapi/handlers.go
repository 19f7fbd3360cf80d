package httpapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jackyeh168/saveforperks/src/internal/application/reward"
	"github.com/jackyeh168/saveforperks/src/internal/application/scan"
	"github.com/jackyeh168/saveforperks/src/internal/domain/identity"
	"github.com/jackyeh168/saveforperks/src/internal/infrastructure/idempotency"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"

	// idempotencyWriteTimeout Complete/Release 的時限，不受請求取消影響
	idempotencyWriteTimeout = 2 * time.Second
)

// ===========================
// 依賴介面
// ===========================

// ScanService 交易引擎
type ScanService interface {
	AuthorizeOperator(ctx context.Context, caller identity.Caller, businessID, operatorID string) error
	ProcessScan(ctx context.Context, caller identity.Caller, cmd scan.ProcessScanCommand) (*scan.ScanResult, error)
	GetBalance(ctx context.Context, caller identity.Caller, q scan.GetBalanceQuery) (*scan.BalanceInfo, error)
	GetScanEvent(ctx context.Context, caller identity.Caller, q scan.GetScanEventQuery) (*scan.ScanEventInfo, error)
	GetRedemption(ctx context.Context, caller identity.Caller, q scan.GetRedemptionQuery) (*scan.RedemptionInfo, error)
}

// RewardCreator 建立獎勵
type RewardCreator interface {
	Execute(ctx context.Context, caller identity.Caller, cmd reward.CreateRewardCommand) (*reward.CreateRewardResult, error)
}

// IdempotencyStore Idempotency-Key 的保存；nil 表示不支援
type IdempotencyStore interface {
	Begin(ctx context.Context, scope, key string) (*idempotency.Response, error)
	Complete(ctx context.Context, scope, key string, resp idempotency.Response) error
	Release(ctx context.Context, scope, key string) error
}

// ===========================
// 請求格式
// ===========================

// ScanRequest POST /scans 的內容
type ScanRequest struct {
	RewardID          string `json:"reward_id"`
	QRCodeValue       string `json:"qr_code_value"`
	PointsChange      int    `json:"points_change"`
	NumRewardsToClaim int    `json:"num_rewards_to_claim"`
}

// CreateRewardRequest POST /rewards 的內容
type CreateRewardRequest struct {
	Name       string                 `json:"name"`
	RewardType string                 `json:"reward_type"`
	CostPoints int                    `json:"cost_points"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// Handler HTTP handlers
type Handler struct {
	scans       ScanService
	rewards     RewardCreator
	idempotency IdempotencyStore
}

// NewHandler 建立 Handler；idempotency 可為 nil
func NewHandler(scans ScanService, rewards RewardCreator, store IdempotencyStore) *Handler {
	return &Handler{scans: scans, rewards: rewards, idempotency: store}
}

// ===========================
// 掃描
// ===========================

// ProcessScan POST /api/business/:businessId/scans
func (h *Handler) ProcessScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errMalformedBody)
		return
	}

	cmd := scan.ProcessScanCommand{
		BusinessID:  c.Param("businessId"),
		OperatorID:  c.GetHeader(headerOperatorID),
		QRToken:     req.QRCodeValue,
		RewardID:    req.RewardID,
		PointsToAdd: req.PointsChange,
		ClaimCount:  req.NumRewardsToClaim,
	}

	key := c.GetHeader(headerIdempotencyKey)
	if key == "" || h.idempotency == nil {
		h.processScan(c, cmd)
		return
	}

	// 重播前先確認呼叫者仍是該商家的操作員；scope 綁定呼叫者身分
	ctx := c.Request.Context()
	caller := callerFrom(c)
	if err := h.scans.AuthorizeOperator(ctx, caller, cmd.BusinessID, cmd.OperatorID); err != nil {
		writeError(c, err)
		return
	}
	scope := cmd.BusinessID + ":" + cmd.OperatorID + ":" + caller.Subject()
	fingerprint := requestHash(req)

	stored, err := h.idempotency.Begin(ctx, scope, key)
	switch {
	case errors.Is(err, idempotency.ErrInProgress):
		respondError(c, http.StatusConflict, errIdempotencyInProgress)
		return
	case err != nil:
		logger.Error("idempotency store failed", "business_id", cmd.BusinessID, "idempotency_key", key, "error", err)
		respondError(c, http.StatusServiceUnavailable, errIdempotencyUnavailable)
		return
	case stored != nil:
		if stored.RequestHash != "" && stored.RequestHash != fingerprint {
			logger.Warn("idempotency key reused with a different body", "business_id", cmd.BusinessID, "idempotency_key", key)
			respondError(c, http.StatusUnprocessableEntity, errIdempotencyKeyReused)
			return
		}
		if stored.Location != "" {
			c.Header("Location", stored.Location)
		}
		c.Header(headerReplayed, "true")
		c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
		return
	}

	result, location, err := h.runScan(c, cmd)
	if err != nil {
		h.releaseIdempotency(ctx, scope, key)
		writeError(c, err)
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		h.releaseIdempotency(ctx, scope, key)
		writeError(c, err)
		return
	}
	resp := idempotency.Response{Status: http.StatusCreated, Location: location, Body: body, RequestHash: fingerprint}
	storeCtx, cancel := idempotencyContext(ctx)
	defer cancel()
	if err := h.idempotency.Complete(storeCtx, scope, key, resp); err != nil {
		logger.Warn("failed to store idempotent response", "business_id", cmd.BusinessID, "idempotency_key", key, "error", err)
	}

	c.Header("Location", location)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

func (h *Handler) releaseIdempotency(ctx context.Context, scope, key string) {
	storeCtx, cancel := idempotencyContext(ctx)
	defer cancel()
	_ = h.idempotency.Release(storeCtx, scope, key)
}

// idempotencyContext 交易已提交後，客戶端斷線也必須寫入結果
func idempotencyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), idempotencyWriteTimeout)
}

// requestHash 請求內容的指紋，相同 key 搭配不同內容時拒絕重播
func requestHash(req ScanRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (h *Handler) processScan(c *gin.Context, cmd scan.ProcessScanCommand) {
	result, location, err := h.runScan(c, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", location)
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) runScan(c *gin.Context, cmd scan.ProcessScanCommand) (*scan.ScanResult, string, error) {
	result, err := h.scans.ProcessScan(c.Request.Context(), callerFrom(c), cmd)
	if err != nil {
		return nil, "", err
	}
	location := "/api/business/" + cmd.BusinessID + "/scans/" + result.ScanEvent.RewardID + "/events/" + result.ScanEvent.ID
	return result, location, nil
}

// GetBalance GET /api/business/:businessId/scans/:rewardId/customerbalance/:qrCodeValue
func (h *Handler) GetBalance(c *gin.Context) {
	result, err := h.scans.GetBalance(c.Request.Context(), callerFrom(c), scan.GetBalanceQuery{
		BusinessID: c.Param("businessId"),
		OperatorID: c.GetHeader(headerOperatorID),
		RewardID:   c.Param("rewardId"),
		QRToken:    c.Param("qrCodeValue"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetScanEvent GET /api/business/:businessId/scans/:rewardId/events/:scanEventId
func (h *Handler) GetScanEvent(c *gin.Context) {
	result, err := h.scans.GetScanEvent(c.Request.Context(), callerFrom(c), scan.GetScanEventQuery{
		BusinessID:  c.Param("businessId"),
		OperatorID:  c.GetHeader(headerOperatorID),
		RewardID:    c.Param("rewardId"),
		ScanEventID: c.Param("scanEventId"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRedemption GET /api/business/:businessId/redemptions/:rewardId/:redemptionId
func (h *Handler) GetRedemption(c *gin.Context) {
	result, err := h.scans.GetRedemption(c.Request.Context(), callerFrom(c), scan.GetRedemptionQuery{
		BusinessID:   c.Param("businessId"),
		OperatorID:   c.GetHeader(headerOperatorID),
		RewardID:     c.Param("rewardId"),
		RedemptionID: c.Param("redemptionId"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ===========================
// 獎勵
// ===========================

// CreateReward POST /api/business/:businessId/rewards
func (h *Handler) CreateReward(c *gin.Context) {
	var req CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errMalformedBody)
		return
	}

	result, err := h.rewards.Execute(c.Request.Context(), callerFrom(c), reward.CreateRewardCommand{
		BusinessID: c.Param("businessId"),
		OperatorID: c.GetHeader(headerOperatorID),
		Name:       req.Name,
		Type:       req.RewardType,
		CostPoints: req.CostPoints,
		Metadata:   req.Metadata,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
