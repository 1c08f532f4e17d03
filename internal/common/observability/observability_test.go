package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"survey-analyst/internal/common/logger"
)

func TestObservability_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	o := New(Options{
		ServiceName:   "survey-analyst-test",
		Registerer:    promclient.NewRegistry(),
		SpanProcessor: rec,
	}, logger.NewTestLogger(t))
	defer o.Shutdown(context.Background())

	ctx, span := o.StartSpan(context.Background(), "intent", attribute.String("run_id", "r1"))
	o.RecordStage(ctx, "Intent agent", 5*time.Millisecond, "ok")
	o.RecordRun(ctx, "completed")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "intent", ended[0].Name())
}

func TestObservability_ExportsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	o := New(Options{ServiceName: "survey-analyst-test", Registerer: reg}, logger.NewTestLogger(t))
	defer o.Shutdown(context.Background())

	o.RecordRun(context.Background(), "completed")

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if strings.Contains(f.GetName(), "runs") {
			found = true
		}
	}
	assert.True(t, found, "team run counter not exported")
}

func TestNewNoop(t *testing.T) {
	o := NewNoop()
	_, span := o.StartSpan(context.Background(), "noop")
	span.End()
	o.RecordRun(context.Background(), "completed")
	o.Shutdown(context.Background())
}
