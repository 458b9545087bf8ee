// Package metrics 注册业务与 HTTP 指标，并通过 /metrics 暴露给 Prometheus。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	feePayments   *prometheus.CounterVec
	feeAmount     prometheus.Counter
	salaryRecords *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	attendance    *prometheus.CounterVec
}

// New 创建独立 Registry 的指标集合
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bca",
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bca",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		feePayments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bca",
			Name:      "fee_payments_total",
			Help:      "学费缴纳次数，按结果分类",
		}, []string{"result"}),
		feeAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bca",
			Name:      "fee_paid_amount_total",
			Help:      "累计已缴学费金额",
		}),
		salaryRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bca",
			Name:      "salary_records_total",
			Help:      "工资记录事件",
		}, []string{"event"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bca",
			Name:      "submission_events_total",
			Help:      "作业提交与评审事件",
		}, []string{"event"}),
		attendance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bca",
			Name:      "attendance_marks_total",
			Help:      "考勤标记次数",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.feePayments, m.feeAmount,
		m.salaryRecords, m.submissions, m.attendance,
	)
	return m
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware 记录 HTTP 请求数与耗时
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// FeePayment 记录一次缴费结果，成功时累加金额
func (m *Metrics) FeePayment(result string, amount int64) {
	if m == nil {
		return
	}
	m.feePayments.WithLabelValues(result).Inc()
	if result == "ok" {
		m.feeAmount.Add(float64(amount))
	}
}

// SalaryEvent 记录工资事件（generated / paid）
func (m *Metrics) SalaryEvent(event string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.salaryRecords.WithLabelValues(event).Add(float64(n))
}

// SubmissionEvent 记录作业事件（submitted / approved / rejected / graded / returned）
func (m *Metrics) SubmissionEvent(event string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(event).Inc()
}

// AttendanceMark 记录考勤标记（marked / self_marked / approved / rejected）
func (m *Metrics) AttendanceMark(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.attendance.WithLabelValues(kind).Add(float64(n))
}
