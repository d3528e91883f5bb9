package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/json/links", "200"))
	RecordAPIRequest("GET", "/json/links", http.StatusOK, 15*time.Millisecond)
	RecordAPIRequest("GET", "/json/links", http.StatusOK, 5*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/json/links", "200"))
	if after-before != 2 {
		t.Errorf("counter delta = %v, want 2", after-before)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	GatewaysLinked.WithLabelValues("NXDN").Set(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `dashboard_gateways_linked{protocol="NXDN"} 3`) {
		t.Error("gateway gauge missing from /metrics output")
	}
}
