package service

import (
	"context"

	"pos-service/internal/broker"
	"pos-service/internal/realtime"
	"pos-service/internal/redisclient"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// changeNotifier fans a committed mutation out to connected displays,
// bumps the snapshot version stamp, and mirrors the change to the audit
// topic. It must only be called after the store commit succeeded, never
// before and never on a failed mutation.
type changeNotifier struct {
	hub   *realtime.Hub
	audit *broker.AuditPublisher
	redis *redisclient.Client
}

func newChangeNotifier(hub *realtime.Hub, audit *broker.AuditPublisher, redis *redisclient.Client) *changeNotifier {
	return &changeNotifier{hub: hub, audit: audit, redis: redis}
}

func (n *changeNotifier) notify(ctx context.Context, change realtime.Change) {
	n.hub.Publish(change)

	if n.redis != nil {
		if _, err := n.redis.BumpSnapshotVersion(ctx); err != nil {
			util.GetLogger().Warn("failed to bump snapshot version", zap.Error(err))
		}
	}

	if n.audit != nil {
		n.audit.PublishChange(ctx, change)
	}
}
