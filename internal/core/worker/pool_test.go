// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumvault/archiver/internal/core/archivejob"
	"github.com/forumvault/archiver/internal/core/artifact"
	"github.com/forumvault/archiver/internal/core/feed"
	"github.com/forumvault/archiver/internal/core/registry"
	"github.com/forumvault/archiver/internal/core/worker"
)

// # Fakes

type fakeJobRepository struct {
	mu      sync.Mutex
	pending []*archivejob.Archive
	failed  map[string]string
	done    map[string]bool
}

func newFakeJobRepository(pending ...*archivejob.Archive) *fakeJobRepository {
	return &fakeJobRepository{pending: pending, failed: map[string]string{}, done: map[string]bool{}}
}

func (r *fakeJobRepository) CreatePending(context.Context, string) (string, error) { return "", nil }

func (r *fakeJobRepository) ClaimNext(context.Context, string, int) (*archivejob.Archive, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return nil, nil
	}
	next := r.pending[0]
	r.pending = r.pending[1:]
	return next, nil
}

func (r *fakeJobRepository) UpdateProgress(context.Context, string, int, string) error { return nil }

func (r *fakeJobRepository) SetComplete(context.Context, string, archivejob.CompleteFields) error {
	return nil
}

func (r *fakeJobRepository) SetFailed(_ context.Context, id, lastError string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[id] = lastError
	return nil
}

func (r *fakeJobRepository) RecoverStuck(context.Context) (int, error) { return 0, nil }

func (r *fakeJobRepository) ListPending(context.Context, int) ([]*archivejob.Archive, error) {
	return nil, nil
}

func (r *fakeJobRepository) FindByLinkID(context.Context, string) (*archivejob.Archive, error) {
	return nil, nil
}

func (r *fakeJobRepository) CountByStatus(context.Context, archivejob.Status) (int, error) {
	return 0, nil
}

type fakeLinkRepository struct {
	links map[string]*feed.Link
}

func (r *fakeLinkRepository) PostExists(context.Context, string) (bool, error) { return false, nil }
func (r *fakeLinkRepository) IngestPost(context.Context, *feed.Post, []feed.ExtractedLink) (int, error) {
	return 0, nil
}
func (r *fakeLinkRepository) FindLinkByID(_ context.Context, id string) (*feed.Link, error) {
	return r.links[id], nil
}

type fakeArtifactRepository struct {
	mu          sync.Mutex
	completions int32
	lastKinds   []string
	lastCids    []string
}

func (r *fakeArtifactRepository) CompleteWithArtifacts(_ context.Context, _ string, artifacts []artifact.NewArtifact, _ archivejob.CompleteFields) error {
	atomic.AddInt32(&r.completions, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range artifacts {
		r.lastKinds = append(r.lastKinds, a.Kind)
		r.lastCids = append(r.lastCids, a.IPFSCid)
	}
	return nil
}

func (r *fakeArtifactRepository) ListByArchiveID(context.Context, string) ([]*artifact.Artifact, error) {
	return nil, nil
}

func (r *fakeArtifactRepository) FindDuplicateByPerceptualHash(context.Context, string) (string, bool, error) {
	return "", false, nil
}

type fakeUploader struct {
	puts int32
}

func (u *fakeUploader) Put(context.Context, string, []byte, string) (string, error) {
	atomic.AddInt32(&u.puts, 1)
	return "", nil
}

type fakeHandler struct {
	name string
	err  error
}

func (h *fakeHandler) Name() string                      { return h.name }
func (h *fakeHandler) Matches(string, string) bool       { return true }
func (h *fakeHandler) Run(ctx context.Context, job registry.JobContext, rawURL string) (registry.Result, error) {
	if h.err != nil {
		return registry.Result{}, h.err
	}
	return registry.Result{
		MediaType:     "text/html",
		ArtifactIndex: map[string]string{"html": "abc"},
		Artifacts:     []registry.Artifact{{Kind: "html", Bytes: []byte("<html></html>"), ContentType: "text/html"}},
	}, nil
}

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakePinner struct {
	mu    sync.Mutex
	calls int32
	err   error
}

func (p *fakePinner) AddAndPin(_ context.Context, _ string, _ []byte) (string, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return "", p.err
	}
	return "bafy-fake-cid", nil
}

// # Tests

func TestPool_ProcessesClaimedJobAndCompletes(t *testing.T) {
	archiveRow := &archivejob.Archive{ID: "arc-1", LinkID: "link-1", Status: archivejob.StatusInProgress}
	jobRepo := newFakeJobRepository(archiveRow)
	jobService := archivejob.NewService(jobRepo, testLogger(), 8, 0, 0)

	linkRepo := &fakeLinkRepository{links: map[string]*feed.Link{
		"link-1": {ID: "link-1", NormalizedURL: "https://example.com/a", Domain: "example.com"},
	}}

	reg := registry.New()
	handler := &fakeHandler{name: "generic_html"}
	reg.Register(handler)

	artifactRepo := &fakeArtifactRepository{}
	uploaderFake := &fakeUploader{}

	pool := worker.NewPool(jobService, linkRepo, reg, artifactRepo, uploaderFake, testLogger(), worker.Config{
		WorkerCount: 1, ClaimBackoff: 10 * time.Millisecond,
	})

	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&artifactRepo.completions) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&uploaderFake.puts))
}

func TestPool_HandlerErrorRecordsFailure(t *testing.T) {
	archiveRow := &archivejob.Archive{ID: "arc-2", LinkID: "link-2", Status: archivejob.StatusInProgress}
	jobRepo := newFakeJobRepository(archiveRow)
	jobService := archivejob.NewService(jobRepo, testLogger(), 8, 0, 0)

	linkRepo := &fakeLinkRepository{links: map[string]*feed.Link{
		"link-2": {ID: "link-2", NormalizedURL: "https://example.com/b", Domain: "example.com"},
	}}

	reg := registry.New()
	reg.Register(&fakeHandler{name: "generic_html", err: errors.New("boom")})

	artifactRepo := &fakeArtifactRepository{}
	uploaderFake := &fakeUploader{}

	pool := worker.NewPool(jobService, linkRepo, reg, artifactRepo, uploaderFake, testLogger(), worker.Config{
		WorkerCount: 1, ClaimBackoff: 10 * time.Millisecond,
	})

	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop()

	assert.Eventually(t, func() bool {
		jobRepo.mu.Lock()
		defer jobRepo.mu.Unlock()
		_, ok := jobRepo.failed["arc-2"]
		return ok
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&artifactRepo.completions))
}

func TestPool_EmptyQueueDoesNotPanic(t *testing.T) {
	jobRepo := newFakeJobRepository()
	jobService := archivejob.NewService(jobRepo, testLogger(), 8, 0, 0)
	linkRepo := &fakeLinkRepository{links: map[string]*feed.Link{}}
	reg := registry.New()
	reg.Register(&fakeHandler{name: "generic_html"})

	pool := worker.NewPool(jobService, linkRepo, reg, &fakeArtifactRepository{}, &fakeUploader{}, testLogger(), worker.Config{
		WorkerCount: 2, ClaimBackoff: 5 * time.Millisecond,
	})

	require.NoError(t, pool.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	pool.Stop()
}

func TestPool_PinsArtifactsWhenPinnerConfigured(t *testing.T) {
	archiveRow := &archivejob.Archive{ID: "arc-3", LinkID: "link-3", Status: archivejob.StatusInProgress}
	jobRepo := newFakeJobRepository(archiveRow)
	jobService := archivejob.NewService(jobRepo, testLogger(), 8, 0, 0)

	linkRepo := &fakeLinkRepository{links: map[string]*feed.Link{
		"link-3": {ID: "link-3", NormalizedURL: "https://example.com/c", Domain: "example.com"},
	}}

	reg := registry.New()
	reg.Register(&fakeHandler{name: "generic_html"})

	artifactRepo := &fakeArtifactRepository{}
	uploaderFake := &fakeUploader{}
	pinner := &fakePinner{}

	pool := worker.NewPool(jobService, linkRepo, reg, artifactRepo, uploaderFake, testLogger(), worker.Config{
		WorkerCount: 1, ClaimBackoff: 10 * time.Millisecond,
	})
	pool.SetPinner(pinner)

	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&artifactRepo.completions) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&pinner.calls))

	artifactRepo.mu.Lock()
	defer artifactRepo.mu.Unlock()
	require.Len(t, artifactRepo.lastCids, 1)
	assert.Equal(t, "bafy-fake-cid", artifactRepo.lastCids[0])
}

func TestPool_PinFailureDoesNotFailJob(t *testing.T) {
	archiveRow := &archivejob.Archive{ID: "arc-4", LinkID: "link-4", Status: archivejob.StatusInProgress}
	jobRepo := newFakeJobRepository(archiveRow)
	jobService := archivejob.NewService(jobRepo, testLogger(), 8, 0, 0)

	linkRepo := &fakeLinkRepository{links: map[string]*feed.Link{
		"link-4": {ID: "link-4", NormalizedURL: "https://example.com/d", Domain: "example.com"},
	}}

	reg := registry.New()
	reg.Register(&fakeHandler{name: "generic_html"})

	artifactRepo := &fakeArtifactRepository{}
	uploaderFake := &fakeUploader{}
	pinner := &fakePinner{err: errors.New("ipfs node unreachable")}

	pool := worker.NewPool(jobService, linkRepo, reg, artifactRepo, uploaderFake, testLogger(), worker.Config{
		WorkerCount: 1, ClaimBackoff: 10 * time.Millisecond,
	})
	pool.SetPinner(pinner)

	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&artifactRepo.completions) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&pinner.calls))

	artifactRepo.mu.Lock()
	defer artifactRepo.mu.Unlock()
	require.Len(t, artifactRepo.lastCids, 1)
	assert.Empty(t, artifactRepo.lastCids[0])

	jobRepo.mu.Lock()
	defer jobRepo.mu.Unlock()
	_, failed := jobRepo.failed["arc-4"]
	assert.False(t, failed)
}
