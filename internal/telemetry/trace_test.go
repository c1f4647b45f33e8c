package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type sampleMeta struct {
	Op      string   `trace:"op"`
	Points  int64    `trace:"swap.points_offered"`
	Offer   string   `trace:"swap.offer_item_id,omitempty"`
	Tx      bool     `trace:"swap.transactional"`
	Tags    []string `trace:"item.tags"`
	Ignored string
}

func newRecordingTrace() (*Trace, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return &Trace{TracerProvider: tp, ServiceName: "rewear-test"}, recorder
}

func TestApplyTraceAttributes(t *testing.T) {
	tr, recorder := newRecordingTrace()

	_, span, end := tr.WithSpan(context.Background(), "accept")
	tr.ApplyTraceAttributes(span, sampleMeta{Op: "accept", Points: 30, Tx: true, Tags: []string{"denim"}})
	end(nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "accept", ended[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "accept", attrs["op"].AsString())
	assert.Equal(t, int64(30), attrs["swap.points_offered"].AsInt64())
	assert.True(t, attrs["swap.transactional"].AsBool())
	assert.Equal(t, []string{"denim"}, attrs["item.tags"].AsStringSlice())
	_, hasOffer := attrs["swap.offer_item_id"]
	assert.False(t, hasOffer, "omitempty 的零值不應寫入")
}

func TestWithSpan_RecordsError(t *testing.T) {
	tr, recorder := newRecordingTrace()

	_, _, end := tr.WithSpan(context.Background(), "fail")
	end(errors.New("boom"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
}

func TestNoopTrace(t *testing.T) {
	tr := NewNoopTrace()
	ctx, span, end := tr.WithSpan(context.Background())
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	end(nil)
}

func TestPrettifyFuncName(t *testing.T) {
	assert.Equal(t, "SwapService.UpdateStatus", prettifyFuncName("rewear/internal/service.(*SwapService).UpdateStatus"))
	assert.Equal(t, "ItemHandler.List", prettifyFuncName("rewear/internal/handler.(*ItemHandler).List-fm"))
}
