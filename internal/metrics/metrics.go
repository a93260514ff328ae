// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワークフローサービスやミドルウェアから利用する。
type MetricsCollector interface {
	RecordTransition(action string)
	RecordPersistenceFailure(kind string)
	RecordExport()
	RecordHTTPStatus(statusCode int)
	RecordRefreshLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	transitions        *prometheus.CounterVec
	persistenceFailure *prometheus.CounterVec
	exports            prometheus.Counter
	httpStatus         *prometheus.CounterVec
	refreshLatency     prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "karteflow_transitions_total",
			Help: "文書状態遷移のアクション別合計数",
		}, []string{"action"}),
		persistenceFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "karteflow_persistence_failure_total",
			Help: "永続化失敗の種別（read/write）ごとの合計数",
		}, []string{"kind"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "karteflow_exports_total",
			Help: "文書出力アーティファクト生成の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "karteflow_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		refreshLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "karteflow_refresh_latency_seconds",
			Help:    "スナップショット再読込のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.transitions,
		c.persistenceFailure,
		c.exports,
		c.httpStatus,
		c.refreshLatency,
	)

	return c
}

// RecordTransition は文書状態遷移を記録する。
func (c *Collector) RecordTransition(action string) {
	c.transitions.WithLabelValues(action).Inc()
}

// RecordPersistenceFailure は永続化失敗を記録する。
func (c *Collector) RecordPersistenceFailure(kind string) {
	c.persistenceFailure.WithLabelValues(kind).Inc()
}

// RecordExport はアーティファクト生成を記録する。
func (c *Collector) RecordExport() {
	c.exports.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRefreshLatency はスナップショット再読込のレイテンシを記録する。
func (c *Collector) RecordRefreshLatency(duration time.Duration) {
	c.refreshLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
