package main

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/log"
)

type memSaver struct {
	mu      sync.Mutex
	batches [][]model.KudoMessage
}

func (s *memSaver) CreateBatch(messages []model.KudoMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]model.KudoMessage(nil), messages...))
	return nil
}

func (s *memSaver) sizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, len(b))
	}
	return out
}

func testLogger(t *testing.T) log.Logger {
	logger, err := log.NewLogrusLoggerTo(io.Discard, "info")
	require.NoError(t, err)
	return logger
}

func TestProcessBatchedKudos_FlushesFullBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	saver := &memSaver{}
	messages := make(chan model.KudoMessage, 10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		processBatchedKudos(ctx, messages, 2, time.Hour, testLogger(t), saver)
	}()

	for i := 0; i < 5; i++ {
		messages <- model.KudoMessage{EventID: string(rune('a' + i))}
	}
	require.Eventually(t, func() bool { return len(saver.sizes()) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, []int{2, 2, 1}, saver.sizes())
}

func TestProcessBatchedKudos_FlushesOnTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	saver := &memSaver{}
	messages := make(chan model.KudoMessage, 10)

	go processBatchedKudos(ctx, messages, 100, 20*time.Millisecond, testLogger(t), saver)

	messages <- model.KudoMessage{EventID: "1"}
	require.Eventually(t, func() bool { return len(saver.sizes()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestKudoHandler(t *testing.T) {
	messages := make(chan model.KudoMessage, 1)
	handler := kudoHandler(context.Background(), messages)

	require.Error(t, handler([]byte("not json")))
	require.Error(t, handler([]byte(`{"type":"kudo.created"}`)))

	payload, err := json.Marshal(model.KudoMessage{EventID: "e1", Type: model.KudoCreated, Kudo: model.Kudo{RepoID: 3}})
	require.NoError(t, err)
	require.NoError(t, handler(payload))

	msg := <-messages
	assert.Equal(t, "e1", msg.EventID)
	assert.Equal(t, int64(3), msg.Kudo.RepoID)
}
