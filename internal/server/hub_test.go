package server

import (
	"testing"
	"time"

	"keepsake/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRunReturnsOnStop(t *testing.T) {
	hub := NewHub(nil, nil, nil, logger.New(logger.DevelopmentMode))

	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	hub.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.Empty(t, hub.clients)
}

func TestHubStopWithoutClients(t *testing.T) {
	hub := NewHub(nil, nil, nil, logger.New(logger.DevelopmentMode))
	require.NotPanics(t, hub.Stop)
}
