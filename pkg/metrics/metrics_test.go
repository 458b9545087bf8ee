package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMetrics_HandlerExposesCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	m.FeePayment("ok", 30000)
	m.SalaryEvent("generated", 2)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()

	for _, want := range []string{
		`bca_fee_paid_amount_total 30000`,
		`bca_salary_records_total{event="generated"} 2`,
		`bca_http_requests_total{method="GET",route="/ping",status="204"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("指标输出缺少 %q", want)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.FeePayment("ok", 1)
	m.SubmissionEvent("submitted")
	m.AttendanceMark("marked", 1)
	m.SalaryEvent("paid", 1)
}
