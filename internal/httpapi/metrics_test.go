package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T) []byte {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	return rr.Body.Bytes()
}

// TestMetricsMiddleware_UsesRoutePattern ensures requests are labeled by the
// chi route pattern instead of the raw URL path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	h := NewMux(&mockService{})
	if w := post(t, h, "/models/abc123/pack", `{"obs":[1]}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := scrape(t)
	if !bytes.Contains(body, []byte("rld_http_requests_total")) {
		t.Fatalf("missing rld_http_requests_total")
	}
	if !bytes.Contains(body, []byte(`path="/models/{id}/pack"`)) {
		t.Fatalf("expected route pattern label")
	}
	if bytes.Contains(body, []byte("abc123")) {
		t.Fatalf("raw path leaked into labels")
	}
}

func TestIncRejected(t *testing.T) {
	before := testutil.ToFloat64(rejectedTotal.WithLabelValues("content_type"))
	req := httptest.NewRequest(http.MethodPost, "/models/m/pack", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "text/plain")
	NewMux(&mockService{}).ServeHTTP(httptest.NewRecorder(), req)
	if got := testutil.ToFloat64(rejectedTotal.WithLabelValues("content_type")); got != before+1 {
		t.Fatalf("content_type rejections=%v want %v", got, before+1)
	}

	before = testutil.ToFloat64(rejectedTotal.WithLabelValues("unspecified"))
	incRejected("")
	if got := testutil.ToFloat64(rejectedTotal.WithLabelValues("unspecified")); got != before+1 {
		t.Fatalf("unspecified rejections=%v want %v", got, before+1)
	}
}
