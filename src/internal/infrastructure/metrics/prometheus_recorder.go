package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "loyalty"

// 指標名稱
const (
	MetricOperationsTotal   = "operations_total"
	MetricOperationDuration = "operation_duration_seconds"
	MetricPointsAccrued     = "points_accrued_total"
	MetricRewardsClaimed    = "rewards_claimed_total"
)

// PrometheusRecorder 交易引擎的 Prometheus 指標
type PrometheusRecorder struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	points     prometheus.Counter
	claimed    prometheus.Counter
}

// NewPrometheusRecorder 建立並註冊指標
// 已註冊過相同指標時沿用既有的 collector
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string, constLabels prometheus.Labels) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        MetricOperationsTotal,
			Help:        "Loyalty operations by outcome.",
			ConstLabels: constLabels,
		}, []string{"operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        MetricOperationDuration,
			Help:        "Loyalty operation latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"operation"}),
		points: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        MetricPointsAccrued,
			Help:        "Points added by committed scans.",
			ConstLabels: constLabels,
		}),
		claimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        MetricRewardsClaimed,
			Help:        "Rewards redeemed by committed scans.",
			ConstLabels: constLabels,
		}),
	}

	var err error
	if r.operations, err = register(reg, r.operations); err != nil {
		return nil, err
	}
	if r.durations, err = register(reg, r.durations); err != nil {
		return nil, err
	}
	if r.points, err = register(reg, r.points); err != nil {
		return nil, err
	}
	if r.claimed, err = register(reg, r.claimed); err != nil {
		return nil, err
	}
	return r, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveOperation 記錄一次操作的結果與耗時
func (r *PrometheusRecorder) ObserveOperation(operation, outcome string, duration time.Duration) {
	r.operations.WithLabelValues(operation, outcome).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// AddPointsAccrued 已提交的累積點數
func (r *PrometheusRecorder) AddPointsAccrued(points int) {
	if points > 0 {
		r.points.Add(float64(points))
	}
}

// AddRewardsClaimed 已提交的兌換份數
func (r *PrometheusRecorder) AddRewardsClaimed(count int) {
	if count > 0 {
		r.claimed.Add(float64(count))
	}
}
