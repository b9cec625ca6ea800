package services

import (
	"context"
	"sync"
	"time"

	"keepsake/pkg/logger"
)

// CapsuleWorker periodically unlocks capsules whose time has come.
type CapsuleWorker struct {
	service   *CapsuleService
	interval  time.Duration
	batchSize int
	logger    *logger.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

func NewCapsuleWorker(service *CapsuleService, l *logger.Logger) *CapsuleWorker {
	return &CapsuleWorker{
		service:   service,
		interval:  30 * time.Second,
		batchSize: 50,
		logger:    l,
		stopChan:  make(chan struct{}),
	}
}

func (w *CapsuleWorker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *CapsuleWorker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

func (w *CapsuleWorker) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			n, err := w.service.UnlockDue(context.Background(), time.Now(), w.batchSize)
			if err != nil {
				w.logger.Errorf("capsule unlock pass failed: %v", err)
				continue
			}
			if n > 0 {
				w.logger.Infof("unlocked %d capsule(s)", n)
			}
		}
	}
}
