package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandlerExposesCounters(t *testing.T) {
	before := testutil.ToFloat64(ContractTransitions.WithLabelValues("monthly", "signed"))
	ContractTransitions.WithLabelValues("monthly", "signed").Inc()
	if got := testutil.ToFloat64(ContractTransitions.WithLabelValues("monthly", "signed")); got != before+1 {
		t.Fatalf("counter = %v, want %v", got, before+1)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "booking_contract_transitions_total") {
		t.Errorf("metrics output missing contract transitions counter")
	}
}

func TestSetupTracingWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "test", "")
	if err != nil {
		t.Fatalf("SetupTracing() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
	_, span := Tracer().Start(context.Background(), "noop")
	span.End()
}
