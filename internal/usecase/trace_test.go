package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/riskibarqy/fpl-collector/internal/domain/rawdata"
	fplmock "github.com/riskibarqy/fpl-collector/internal/mocks/domain/fpl"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordSpans swaps the package tracer for one backed by an in-memory recorder.
// Callers must not run in parallel.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := usecaseTracer
	usecaseTracer = provider.Tracer("fpl-collector/internal/usecase")
	t.Cleanup(func() {
		usecaseTracer = previous
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func endedSpan(t *testing.T, recorder *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			return span
		}
	}
	t.Fatalf("span %q not recorded", name)
	return nil
}

func TestRunService_Run_RecordsSpansWithoutCallerSpan(t *testing.T) {
	recorder := recordSpans(t)

	provider := fplmock.NewProvider(t)
	provider.On("FetchBootstrap", mock.Anything).
		Return(fpl.Bootstrap{}, rawdata.Payload{}, errors.New("connection refused")).Once()
	service := NewRunService(RunServiceDeps{
		Collector: newTestCollector(provider, 10),
		Writer:    &stubWriter{},
		Rules:     DefaultValidationRules(),
	})

	if _, err := service.Run(context.Background(), "data"); !errors.Is(err, ErrFatalAssembly) {
		t.Fatalf("expected fatal assembly error, got %v", err)
	}

	root := endedSpan(t, recorder, "collector.run")
	collect := endedSpan(t, recorder, "usecase.CollectorService.Collect")
	if root.Status().Code != codes.Error || collect.Status().Code != codes.Error {
		t.Fatalf("expected error status on both spans: root=%v collect=%v", root.Status(), collect.Status())
	}
	if collect.Parent().SpanID() != root.SpanContext().SpanID() {
		t.Fatalf("collect span must be a child of the run span")
	}
	if len(collect.Events()) == 0 {
		t.Fatalf("expected the error to be recorded as a span event")
	}
}

func TestRunService_ValidateOnly_RecordsLoadError(t *testing.T) {
	recorder := recordSpans(t)

	service := NewRunService(RunServiceDeps{Loader: stubLoader{}, Rules: DefaultValidationRules()})
	if _, err := service.ValidateOnly(context.Background(), "missing.json"); err == nil {
		t.Fatalf("expected load error")
	}

	span := endedSpan(t, recorder, "collector.validate_only")
	if span.Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", span.Status())
	}
}

func TestStartUsecaseSpan_NoCallerSpanStaysNoop(t *testing.T) {
	recorder := recordSpans(t)

	_, span := startUsecaseSpan(context.Background(), "usecase.Detached")
	span.End()
	if got := len(recorder.Ended()); got != 0 {
		t.Fatalf("expected no recorded spans, got %d", got)
	}
}
