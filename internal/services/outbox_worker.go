package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"keepsake/internal/domain/outbox"
	"keepsake/internal/repository"
	"keepsake/pkg/events"
	"keepsake/pkg/logger"
)

// EventsChannel is the Redis pub/sub channel every outbox event fans out on.
const EventsChannel = "keepsake:events"

const maxOutboxRetries = 9

// OutboxWorker polls the outbox table and publishes events to the broker.
type OutboxWorker struct {
	outboxRepo repository.OutboxRepository
	broker     events.Publisher
	logger     *logger.Logger
	interval   time.Duration
	batchSize  int
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

func NewOutboxWorker(outboxRepo repository.OutboxRepository, broker events.Publisher, l *logger.Logger) *OutboxWorker {
	return &OutboxWorker{
		outboxRepo: outboxRepo,
		broker:     broker,
		logger:     l,
		interval:   100 * time.Millisecond,
		batchSize:  100,
		stopChan:   make(chan struct{}),
	}
}

func (w *OutboxWorker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *OutboxWorker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

func (w *OutboxWorker) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processBatch()
		}
	}
}

func (w *OutboxWorker) processBatch() {
	ctx := context.Background()
	pending, err := w.outboxRepo.GetPending(ctx, w.batchSize)
	if err != nil {
		w.logger.Errorf("outbox poll failed: %v", err)
		return
	}

	for _, event := range pending {
		w.processEvent(ctx, &event)
	}
}

func (w *OutboxWorker) processEvent(ctx context.Context, e *outbox.OutboxEvent) {
	// Prevent duplicate processing
	if err := w.outboxRepo.MarkProcessing(ctx, e.ID); err != nil {
		return
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
		w.outboxRepo.MarkFailed(ctx, e.ID, "failed to unmarshal payload")
		return
	}

	event := events.Event{
		Type:      e.EventType,
		Payload:   payload,
		Timestamp: e.CreatedAt.UnixMilli(),
	}
	if err := w.broker.Publish(ctx, EventsChannel, event); err != nil {
		w.outboxRepo.IncrementRetry(ctx, e.ID)
		if e.RetryCount >= maxOutboxRetries {
			w.outboxRepo.MarkFailed(ctx, e.ID, err.Error())
		}
		return
	}

	w.outboxRepo.MarkCompleted(ctx, e.ID)
}
