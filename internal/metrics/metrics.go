package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "member_ledger"

var (
	// WorkflowDuration 核心业务流程耗时
	WorkflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_duration_seconds",
			Help:      "Duration of ledger workflows in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"workflow", "status"},
	)

	// PointsChanged 积分变动累计值
	PointsChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_changed_total",
			Help:      "Total points credited or debited, by direction and reason",
		},
		[]string{"direction", "reason"},
	)

	// ReconcileProcessed 对账任务处理条数
	ReconcileProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_processed_total",
			Help:      "Rows changed by reconciliation jobs",
		},
		[]string{"job"},
	)

	// ReconcileRuns 对账任务执行次数
	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_runs_total",
			Help:      "Reconciliation job executions, by job and status",
		},
		[]string{"job", "status"},
	)

	// HTTPRequests 接口请求计数
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status code",
		},
		[]string{"method", "route", "code"},
	)

	// HTTPDuration 接口耗时
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveWorkflow 记录流程耗时
func ObserveWorkflow(workflow string, start time.Time, err error) {
	WorkflowDuration.WithLabelValues(workflow, statusOf(err)).Observe(time.Since(start).Seconds())
}

// RecordPoints 记录积分变动
func RecordPoints(direction, reason string, amount float64) {
	if amount <= 0 {
		return
	}
	PointsChanged.WithLabelValues(direction, reason).Add(amount)
}

// RecordReconcile 记录对账任务结果
func RecordReconcile(job string, processed int64, err error) {
	ReconcileRuns.WithLabelValues(job, statusOf(err)).Inc()
	if processed > 0 {
		ReconcileProcessed.WithLabelValues(job).Add(float64(processed))
	}
}

// ObserveHTTP 记录一次接口请求
func ObserveHTTP(method, route string, code int, start time.Time) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// Handler 指标暴露端点
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusOf(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
