package kafka

import (
	"context"

	"github.com/NordCoder/crmdesk/internal/domain/kafka"
)

type CRMEventsKafka struct {
	p *Producer
}

func NewCRMEventsKafka(p *Producer) *CRMEventsKafka { return &CRMEventsKafka{p: p} }

var _ kafka.CRMEvents = (*CRMEventsKafka)(nil)

func (e *CRMEventsKafka) PublishEntityEvent(ctx context.Context, kind string, key int64, payload []byte) error {
	return e.p.Publish(ctx, KeyFromInt64(key), kind, payload)
}
