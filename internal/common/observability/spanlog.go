package observability

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"form-submissions/internal/common/logger"
)

// logSpanProcessor writes every ended span to the service log. Failed spans
// are logged at warn, the rest at debug.
type logSpanProcessor struct {
	logger logger.Logger
}

// NewLogSpanProcessor returns a span processor that logs ended spans.
func NewLogSpanProcessor(log logger.Logger) sdktrace.SpanProcessor {
	return &logSpanProcessor{logger: log.WithFields(map[string]interface{}{"component": "tracing"})}
}

func (p *logSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := map[string]interface{}{
		"span":        s.Name(),
		"traceId":     s.SpanContext().TraceID().String(),
		"spanId":      s.SpanContext().SpanID().String(),
		"duration_ms": s.EndTime().Sub(s.StartTime()).Milliseconds(),
	}
	for _, kv := range s.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}

	if s.Status().Code == codes.Error {
		fields["error"] = s.Status().Description
		p.logger.Warn("span ended with error", fields)
		return
	}
	p.logger.Debug("span ended", fields)
}

func (p *logSpanProcessor) Shutdown(context.Context) error { return nil }

func (p *logSpanProcessor) ForceFlush(context.Context) error { return nil }
