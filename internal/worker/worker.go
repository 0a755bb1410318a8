package worker

import (
	"context"
	"errors"
	"log"

	"pos-service/internal/broker"
	"pos-service/internal/realtime"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/segmentio/kafka-go"
)

// ArchiveWorker consumes the mirrored change topic and appends every
// decodable envelope to the change_log table. Envelopes with an unknown
// resource type are dropped silently: they come from a newer build and are
// not an error here.
type ArchiveWorker struct {
	consumer *broker.Consumer
	store    *store.Store
}

// NewArchiveWorker creates a new archive worker
func NewArchiveWorker(consumer *broker.Consumer, store *store.Store) *ArchiveWorker {
	return &ArchiveWorker{
		consumer: consumer,
		store:    store,
	}
}

// Start starts the worker
func (w *ArchiveWorker) Start(ctx context.Context) error {
	log.Println("Starting archive worker...")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *ArchiveWorker) Stop() error {
	log.Println("Stopping archive worker...")
	return w.consumer.Close()
}

func (w *ArchiveWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	change, err := realtime.Decode(msg.Value)
	if err != nil {
		if errors.Is(err, realtime.ErrUnknownResourceType) {
			log.Printf("Skipping envelope with unknown resource type: %v", err)
			return nil
		}
		log.Printf("Dropping undecodable envelope: %v", err)
		return nil
	}

	if err := w.store.RecordChange(ctx, change.ResourceType, change.Op, change.ID, msg.Value); err != nil {
		return err
	}

	util.ChangesArchivedTotal.Inc()
	return nil
}
