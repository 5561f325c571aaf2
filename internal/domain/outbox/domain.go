package outbox

import (
	"context"
	"time"
)

type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
)

type Kind int

const (
	KindTraderCreated Kind = iota + 1
	KindTraderUpdated
	KindTraderDeleted
	KindTaskCreated
	KindTaskUpdated
	KindTaskCommentAdded
)

var kindNames = map[Kind]string{
	KindTraderCreated:    "trader.created",
	KindTraderUpdated:    "trader.updated",
	KindTraderDeleted:    "trader.deleted",
	KindTaskCreated:      "task.created",
	KindTaskUpdated:      "task.updated",
	KindTaskCommentAdded: "task.comment_added",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

type Message struct {
	IdempotencyKey string
	Kind           Kind
	Data           []byte
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Tracestate     string
	Traceparent    string
	Baggage        string
}

// EntityEvent is the JSON payload stored in the outbox and published as-is.
type EntityEvent struct {
	Entity  string    `json:"entity"`
	ID      int64     `json:"id"`
	ActorID int64     `json:"actor_id"`
	At      time.Time `json:"at"`
}

type Repository interface {
	Enqueue(ctx context.Context, key string, kind Kind, data []byte) error

	PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]Message, error)

	MarkSuccess(ctx context.Context, keys []string) error
}

// Enqueuer is the write side used by usecases inside a transaction.
type Enqueuer interface {
	Enqueue(ctx context.Context, key string, kind Kind, data []byte) error
}

type KindHandler func(ctx context.Context, data []byte) error

type GlobalHandler func(kind Kind) (KindHandler, error)
