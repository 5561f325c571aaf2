package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NordCoder/crmdesk/internal/domain/kafka"
	"github.com/NordCoder/crmdesk/internal/domain/outbox"
	"github.com/NordCoder/crmdesk/internal/obs/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	outboxHandlerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_handler_latency_seconds",
		Help:    "Latency of outbox handlers (publish with retries).",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	outboxHandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_handler_errors_total",
		Help: "Errors in outbox handlers (after retries).",
	}, []string{"kind"})
)

func instrument(kind string, h outbox.KindHandler, pol retry.Policy) outbox.KindHandler {
	tr := otel.Tracer("outbox.handler")
	if pol.Name == "" {
		pol.Name = "outbox_" + kind
	}
	return func(ctx context.Context, data []byte) error {
		ctx, span := tr.Start(ctx, "outbox.handle")
		span.SetAttributes(attribute.String("outbox.kind", kind))
		defer span.End()

		start := time.Now()
		err := retry.Do(ctx, func() error { return h(ctx, data) }, pol)
		outboxHandlerLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			outboxHandlerErrors.WithLabelValues(kind).Inc()
		}
		return err
	}
}

// MakeGlobalOutboxHandler routes every known entity event kind to the
// CRM events topic, keyed by entity id.
func MakeGlobalOutboxHandler(pub kafka.CRMEvents, pol retry.Policy) outbox.GlobalHandler {
	return func(kind outbox.Kind) (outbox.KindHandler, error) {
		name := kind.String()
		if name == "unknown" {
			return nil, fmt.Errorf("unsupported outbox kind: %d", kind)
		}
		base := func(ctx context.Context, data []byte) error {
			var ev outbox.EntityEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				return fmt.Errorf("unmarshal %s payload: %w", name, err)
			}
			return pub.PublishEntityEvent(ctx, name, ev.ID, data)
		}
		return instrument(name, base, pol), nil
	}
}
