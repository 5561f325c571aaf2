package outbox

import (
	"context"

	"github.com/NordCoder/crmdesk/internal/domain/outbox"
	"github.com/NordCoder/crmdesk/internal/obs/retry"
)

// WrapKindHandler retries h under p without the tracing and metrics of instrument.
func WrapKindHandler(h outbox.KindHandler, p retry.Policy) outbox.KindHandler {
	return func(ctx context.Context, data []byte) error {
		return retry.Do(ctx, func() error { return h(ctx, data) }, p)
	}
}
