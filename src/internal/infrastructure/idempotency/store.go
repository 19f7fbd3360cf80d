package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

var (
	// ErrInProgress 相同 key 的請求仍在處理中
	ErrInProgress = errors.New("request with this idempotency key is still in progress")
)

// Config Store 設定
type Config struct {
	// KeyPrefix 所有 key 的前綴（例如 "perks:"）
	KeyPrefix string
	// LockTTL 處理中鎖的存活時間；處理程序崩潰時鎖會自動過期
	LockTTL time.Duration
	// ResponseTTL 已完成回應的保留時間
	ResponseTTL time.Duration
}

// DefaultConfig 預設值
func DefaultConfig() Config {
	return Config{
		KeyPrefix:   "",
		LockTTL:     30 * time.Second,
		ResponseTTL: 24 * time.Hour,
	}
}

// Response 已完成請求的回應，重送時原樣返回
type Response struct {
	Status   int             `json:"status"`
	Location string          `json:"location,omitempty"`
	Body     json.RawMessage `json:"body"`

	// RequestHash 原始請求內容的指紋；空字串表示不比對
	RequestHash string `json:"request_hash,omitempty"`
}

// Store 以 Redis 實作 Idempotency-Key
//
// 流程：Begin 先查已完成的回應；沒有時以 SET NX 取得處理中鎖。
// 成功後 Complete 寫入回應並釋放鎖；失敗時 Release 只釋放鎖，讓呼叫者可以重試。
type Store struct {
	client goredis.UniversalClient
	cfg    Config
}

// NewStore 建立 Store
func NewStore(client goredis.UniversalClient, cfg Config) *Store {
	defaults := DefaultConfig()
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaults.LockTTL
	}
	if cfg.ResponseTTL <= 0 {
		cfg.ResponseTTL = defaults.ResponseTTL
	}
	return &Store{client: client, cfg: cfg}
}

// Begin 開始處理一個 key
//
// 已完成時返回先前的回應；其他請求正在處理時返回 ErrInProgress；
// 取得鎖時返回 (nil, nil)，呼叫者必須接著呼叫 Complete 或 Release。
func (s *Store) Begin(ctx context.Context, scope, key string) (*Response, error) {
	stored, err := s.lookup(ctx, scope, key)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		logger.Info("idempotent replay", "scope", scope, "idempotency_key", key)
		return stored, nil
	}

	lockValue := strconv.FormatInt(time.Now().UnixNano(), 10)
	acquired, err := s.client.SetNX(ctx, s.lockKey(scope, key), lockValue, s.cfg.LockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire idempotency lock: %w", err)
	}
	if !acquired {
		// 鎖被搶走的同時，持有者可能剛好完成
		stored, err := s.lookup(ctx, scope, key)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			return stored, nil
		}
		return nil, ErrInProgress
	}
	return nil, nil
}

// Complete 保存回應並釋放鎖
func (s *Store) Complete(ctx context.Context, scope, key string, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode idempotent response: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.responseKey(scope, key), data, s.cfg.ResponseTTL)
		pipe.Del(ctx, s.lockKey(scope, key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store idempotent response: %w", err)
	}
	return nil
}

// Release 只釋放鎖（處理失敗時呼叫）
func (s *Store) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, s.lockKey(scope, key)).Err(); err != nil {
		logger.Warn("failed to release idempotency lock", "scope", scope, "idempotency_key", key, "error", err)
		return err
	}
	return nil
}

func (s *Store) lookup(ctx context.Context, scope, key string) (*Response, error) {
	data, err := s.client.Get(ctx, s.responseKey(scope, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotent response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode idempotent response: %w", err)
	}
	return &resp, nil
}

func (s *Store) responseKey(scope, key string) string {
	return s.cfg.KeyPrefix + "idem:resp:" + scope + ":" + key
}

func (s *Store) lockKey(scope, key string) string {
	return s.cfg.KeyPrefix + "idem:lock:" + scope + ":" + key
}
