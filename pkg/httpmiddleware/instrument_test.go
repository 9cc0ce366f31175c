package httpmiddleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/drinks-api/pkg/httpmiddleware"
)

type recordingTelemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	tp     *sdktrace.TracerProvider
	mp     *sdkmetric.MeterProvider
}

func newRecordingTelemetry(t *testing.T) *recordingTelemetry {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	tel := &recordingTelemetry{
		spans:  spans,
		reader: reader,
		tp:     sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)),
		mp:     sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
	t.Cleanup(func() {
		_ = tel.tp.Shutdown(context.Background())
		_ = tel.mp.Shutdown(context.Background())
	})
	return tel
}

func (r *recordingTelemetry) TracerProvider() trace.TracerProvider { return r.tp }
func (r *recordingTelemetry) MeterProvider() metric.MeterProvider  { return r.mp }

// routes collects every http.route attribute recorded on server metrics.
func (r *recordingTelemetry) routes(t *testing.T) []string {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.reader.Collect(context.Background(), &rm))

	var out []string
	add := func(set attribute.Set) {
		if v, ok := set.Value("http.route"); ok {
			out = append(out, v.AsString())
		}
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					add(dp.Attributes)
				}
			case metricdata.Histogram[int64]:
				for _, dp := range data.DataPoints {
					add(dp.Attributes)
				}
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					add(dp.Attributes)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					add(dp.Attributes)
				}
			}
		}
	}
	return out
}

func TestInstrument(t *testing.T) {
	tel := newRecordingTelemetry(t)

	r := chi.NewRouter()
	r.Use(httpmiddleware.Instrument("drinks", tel))
	r.Get("/drinks/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/drinks/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	ended := tel.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /drinks/{id}", ended[0].Name())
	assert.Equal(t, trace.SpanKindServer, ended[0].SpanKind())

	assert.Contains(t, tel.routes(t), "/drinks/{id}")
}

func TestInstrument_Unrouted(t *testing.T) {
	tel := newRecordingTelemetry(t)

	r := chi.NewRouter()
	r.Use(httpmiddleware.Instrument("drinks", tel))
	r.Get("/drinks", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ended := tel.spans.Ended()
	require.Len(t, ended, 1)
	assert.NotContains(t, ended[0].Name(), "{")
}
