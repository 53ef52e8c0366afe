package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(context.Context) { r.calls.Add(1) }

func TestBoardSyncWorkerRefreshesOnTick(t *testing.T) {
	r := &countingRefresher{}
	w := NewBoardSyncWorker(r, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestBoardSyncWorkerDisabled(t *testing.T) {
	r := &countingRefresher{}
	w := NewBoardSyncWorker(r, 0, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled worker should return immediately")
	}
	assert.Zero(t, r.calls.Load())
}
