package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 予約結果のラベル値
const (
	StatusSuccess         = "success"
	StatusNotFound        = "not_found"
	StatusInvalid         = "invalid"
	StatusConflict        = "conflict"
	StatusPolicyViolation = "policy_violation"
	StatusError           = "error"
)

// Metrics はアプリケーションのメトリクスを管理する
// nil のまま各メソッドを呼んでも何もしない
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約の総数（status: success, not_found, invalid, conflict, policy_violation, error）
	ReservationsTotal *prometheus.CounterVec

	// 予約処理の所要時間（status）
	ReservationDuration *prometheus.HistogramVec

	// 座席割り当てルールによる拒否数（rule: even_count, all_together, isolated_seat）
	PolicyRejectionsTotal *prometheus.CounterVec

	// アウトボックスの配信数（status: published, failed）
	OutboxPublishedTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of reservation attempts",
			},
			[]string{"status"},
		),
		ReservationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reservation_duration_seconds",
				Help:    "Time spent creating a reservation, including the transaction",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"status"},
		),
		PolicyRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policy_rejections_total",
				Help: "Total number of reservations rejected by a seating rule",
			},
			[]string{"rule"},
		),
		OutboxPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outbox_published_total",
				Help: "Total number of outbox messages relayed to the broker",
			},
			[]string{"status"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.ReservationDuration,
		m.PolicyRejectionsTotal,
		m.OutboxPublishedTotal,
		m.DistributedLockDuration,
	)

	return m
}

// ObserveReservation は予約結果と所要時間を記録する
func (m *Metrics) ObserveReservation(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(status).Inc()
	m.ReservationDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// IncPolicyRejection はルールによる拒否を記録する
func (m *Metrics) IncPolicyRejection(rule string) {
	if m == nil {
		return
	}
	m.PolicyRejectionsTotal.WithLabelValues(rule).Inc()
}

// IncOutboxPublished はアウトボックス配信の結果を記録する
func (m *Metrics) IncOutboxPublished(status string) {
	if m == nil {
		return
	}
	m.OutboxPublishedTotal.WithLabelValues(status).Inc()
}

// ObserveLock は分散ロック操作の所要時間を記録する
func (m *Metrics) ObserveLock(operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
