package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NordCoder/crmdesk/internal/domain/outbox"
)

// Emit records an entity event in the outbox. Call it with the transaction
// context of the change it describes.
func Emit(ctx context.Context, enq outbox.Enqueuer, kind outbox.Kind, entity string, id, actorID int64, at time.Time) error {
	ev := outbox.EntityEvent{Entity: entity, ID: id, ActorID: actorID, At: at.UTC()}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}
	key := fmt.Sprintf("%s:%d:%d", kind, id, ev.At.UnixNano())
	if err := enq.Enqueue(ctx, key, kind, b); err != nil {
		return fmt.Errorf("outbox enqueue: %w", err)
	}
	return nil
}
