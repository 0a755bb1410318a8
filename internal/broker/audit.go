package broker

import (
	"context"
	"fmt"

	"pos-service/internal/realtime"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// AuditPublisher mirrors every broadcast change envelope onto a Kafka topic
// for the archive worker. The in-process hub stays the delivery path for
// displays; the topic is an audit trail only.
type AuditPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewAuditPublisher creates a new audit publisher
func NewAuditPublisher(producer *Producer) *AuditPublisher {
	return &AuditPublisher{
		producer: producer,
		logger:   util.GetLogger(),
	}
}

// PublishChange mirrors one envelope. Best-effort: errors are logged and
// swallowed, the originating command never fails because of the mirror.
func (ap *AuditPublisher) PublishChange(ctx context.Context, change realtime.Change) {
	data, err := change.Encode()
	if err != nil {
		ap.logger.Error("failed to encode change for audit",
			zap.String("resource_type", change.ResourceType),
			zap.Error(err))
		return
	}

	key := fmt.Sprintf("%s-%s", change.ResourceType, change.ID)
	if err := ap.producer.Publish(ctx, key, data); err != nil {
		ap.logger.Error("failed to mirror change to kafka",
			zap.String("resource_type", change.ResourceType),
			zap.String("op", change.Op),
			zap.Error(err))
	}
}
