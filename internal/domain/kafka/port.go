package kafka

import "context"

type CRMEvents interface {
	PublishEntityEvent(ctx context.Context, kind string, key int64, payload []byte) error
}
