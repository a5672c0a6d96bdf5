// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cleanup_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/forumvault/archiver/internal/core/cleanup"
)

type fakeRepository struct {
	staleClaimCalls int32
	auditCalls      int32
	staleReturn     int
	auditReturn     int
}

func (r *fakeRepository) RecoverStaleClaims(context.Context, time.Time) (int, error) {
	atomic.AddInt32(&r.staleClaimCalls, 1)
	return r.staleReturn, nil
}

func (r *fakeRepository) DeleteOldAuditEvents(context.Context, time.Time) (int, error) {
	atomic.AddInt32(&r.auditCalls, 1)
	return r.auditReturn, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_RunsImmediatelyOnStart(t *testing.T) {
	repo := &fakeRepository{staleReturn: 2, auditReturn: 5}
	w := cleanup.NewWorker(repo, cleanup.Config{Interval: time.Hour}, testLogger())

	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&repo.staleClaimCalls) >= 1 && atomic.LoadInt32(&repo.auditCalls) >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestWorker_RunsOnInterval(t *testing.T) {
	repo := &fakeRepository{}
	w := cleanup.NewWorker(repo, cleanup.Config{Interval: 20 * time.Millisecond}, testLogger())

	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&repo.staleClaimCalls) >= 3
	}, time.Second, 10*time.Millisecond)
}

func TestWorker_StopEndsLoopPromptly(t *testing.T) {
	repo := &fakeRepository{}
	w := cleanup.NewWorker(repo, cleanup.Config{Interval: time.Hour}, testLogger())

	w.Start(context.Background())
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return promptly")
	}
}
