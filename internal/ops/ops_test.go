// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ops_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumvault/archiver/internal/core/archivejob"
	"github.com/forumvault/archiver/internal/core/worker"
	"github.com/forumvault/archiver/internal/ops"
)

type fakeJobRepository struct {
	counts map[archivejob.Status]int
}

func (r *fakeJobRepository) CreatePending(context.Context, string) (string, error) { return "", nil }
func (r *fakeJobRepository) ClaimNext(context.Context, string, int) (*archivejob.Archive, error) {
	return nil, nil
}
func (r *fakeJobRepository) UpdateProgress(context.Context, string, int, string) error { return nil }
func (r *fakeJobRepository) SetComplete(context.Context, string, archivejob.CompleteFields) error {
	return nil
}
func (r *fakeJobRepository) SetFailed(context.Context, string, string, time.Time) error {
	return nil
}
func (r *fakeJobRepository) RecoverStuck(context.Context) (int, error) { return 0, nil }
func (r *fakeJobRepository) ListPending(context.Context, int) ([]*archivejob.Archive, error) {
	return nil, nil
}
func (r *fakeJobRepository) FindByLinkID(context.Context, string) (*archivejob.Archive, error) {
	return nil, nil
}
func (r *fakeJobRepository) CountByStatus(_ context.Context, status archivejob.Status) (int, error) {
	return r.counts[status], nil
}

type fakePoolOccupancy struct {
	occupancy worker.Occupancy
}

func (p fakePoolOccupancy) Occupancy() worker.Occupancy { return p.occupancy }

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestHealthHandlers_LivenessAlwaysOK(t *testing.T) {
	liveness, _ := ops.NewHealthHandlers(ops.Dependencies{}, testLogger())

	request := httptest.NewRequest("GET", "/health", nil)
	recorder := httptest.NewRecorder()
	liveness(recorder, request)

	assert.Equal(t, 200, recorder.Code)
}

func TestHealthHandlers_ReadinessOKWhenDependenciesHealthy(t *testing.T) {
	_, readiness := ops.NewHealthHandlers(ops.Dependencies{
		CheckDatabase: func() error { return nil },
		CheckCache:    func() error { return nil },
	}, testLogger())

	request := httptest.NewRequest("GET", "/ready", nil)
	recorder := httptest.NewRecorder()
	readiness(recorder, request)

	assert.Equal(t, 200, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	assert.Equal(t, "ready", data["status"])
}

func TestHealthHandlers_ReadinessDegradedWhenDependencyFails(t *testing.T) {
	_, readiness := ops.NewHealthHandlers(ops.Dependencies{
		CheckDatabase: func() error { return errors.New("connection refused") },
		CheckCache:    func() error { return nil },
	}, testLogger())

	request := httptest.NewRequest("GET", "/ready", nil)
	recorder := httptest.NewRecorder()
	readiness(recorder, request)

	assert.Equal(t, 503, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	assert.Equal(t, "degraded", data["status"])
}

func TestStatsHandler_ReportsCountsAndOccupancy(t *testing.T) {
	repo := &fakeJobRepository{counts: map[archivejob.Status]int{
		archivejob.StatusPending:    3,
		archivejob.StatusInProgress: 1,
		archivejob.StatusComplete:   40,
		archivejob.StatusFailed:     2,
	}}
	jobs := archivejob.NewService(repo, testLogger(), 8, 0, 0)
	pool := fakePoolOccupancy{occupancy: worker.Occupancy{WorkerCount: 4, InFlight: 1}}

	handler := ops.NewStatsHandler(jobs, pool)

	request := httptest.NewRequest("GET", "/stats", nil)
	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, 200, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	archives := data["archives"].(map[string]any)
	assert.Equal(t, float64(3), archives["pending"])
	assert.Equal(t, float64(1), archives["in_progress"])
	assert.Equal(t, float64(40), archives["complete"])
	assert.Equal(t, float64(2), archives["failed"])

	poolData := data["pool"].(map[string]any)
	assert.Equal(t, float64(4), poolData["worker_count"])
	assert.Equal(t, float64(1), poolData["in_flight"])
}
