// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archivejob_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumvault/archiver/internal/core/archivejob"
)

type fakeRepository struct {
	archives map[string]*archivejob.Archive
	failErr  string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{archives: map[string]*archivejob.Archive{}}
}

func (f *fakeRepository) CreatePending(_ context.Context, linkID string) (string, error) {
	for _, a := range f.archives {
		if a.LinkID == linkID {
			return "", errors.New("duplicate")
		}
	}
	id := "archive-" + linkID
	f.archives[id] = &archivejob.Archive{ID: id, LinkID: linkID, Status: archivejob.StatusPending}
	return id, nil
}

func (f *fakeRepository) ClaimNext(_ context.Context, workerID string, maxAttempts int) (*archivejob.Archive, error) {
	for _, a := range f.archives {
		if a.Status == archivejob.StatusPending && a.AttemptCount < maxAttempts {
			a.Status = archivejob.StatusInProgress
			a.ClaimedBy = &workerID
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) UpdateProgress(_ context.Context, id string, pct int, progressJSON string) error {
	f.archives[id].ProgressPct = pct
	return nil
}

func (f *fakeRepository) SetComplete(_ context.Context, id string, fields archivejob.CompleteFields) error {
	f.archives[id].Status = archivejob.StatusComplete
	f.archives[id].Title = fields.Title
	return nil
}

func (f *fakeRepository) SetFailed(_ context.Context, id string, lastError string, nextAttemptAt time.Time) error {
	a := f.archives[id]
	a.Status = archivejob.StatusFailed
	a.AttemptCount++
	a.LastError = &lastError
	a.NextAttemptAt = nextAttemptAt
	f.failErr = lastError
	return nil
}

func (f *fakeRepository) RecoverStuck(_ context.Context) (int, error) {
	n := 0
	for _, a := range f.archives {
		if a.Status == archivejob.StatusInProgress {
			a.Status = archivejob.StatusPending
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) ListPending(_ context.Context, limit int) ([]*archivejob.Archive, error) {
	var out []*archivejob.Archive
	for _, a := range f.archives {
		if a.Status == archivejob.StatusPending {
			out = append(out, a)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepository) FindByLinkID(_ context.Context, linkID string) (*archivejob.Archive, error) {
	for _, a := range f.archives {
		if a.LinkID == linkID {
			return a, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRepository) CountByStatus(_ context.Context, status archivejob.Status) (int, error) {
	n := 0
	for _, a := range f.archives {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_CreatePending_OnePerLink(t *testing.T) {
	repo := newFakeRepository()
	service := archivejob.NewService(repo, testLogger(), 0, 0, 0)

	id1, err := service.CreatePending(context.Background(), "link-1")
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	_, err = service.CreatePending(context.Background(), "link-1")
	assert.Error(t, err)
}

func TestService_Fail_IncrementsAttemptCountAndSchedulesBackoff(t *testing.T) {
	repo := newFakeRepository()
	service := archivejob.NewService(repo, testLogger(), 8, 0, 0)

	id, err := service.CreatePending(context.Background(), "link-1")
	require.NoError(t, err)
	archive, err := service.Claim(context.Background(), "worker-a")
	require.NoError(t, err)
	require.Equal(t, id, archive.ID)

	before := time.Now()
	require.NoError(t, service.Fail(context.Background(), archive, errors.New("boom")))

	updated := repo.archives[id]
	assert.Equal(t, 1, updated.AttemptCount)
	assert.Equal(t, archivejob.StatusFailed, updated.Status)
	assert.True(t, updated.NextAttemptAt.After(before))
}

func TestService_IsRetriable_RespectsMaxAttempts(t *testing.T) {
	repo := newFakeRepository()
	service := archivejob.NewService(repo, testLogger(), 2, 0, 0)

	archive := &archivejob.Archive{AttemptCount: 1}
	assert.True(t, service.IsRetriable(archive))

	archive.AttemptCount = 2
	assert.False(t, service.IsRetriable(archive))
}

func TestBackoffDelay_IsMonotonicAndCapped(t *testing.T) {
	service := archivejob.NewService(newFakeRepository(), testLogger(), 0, 0, 0)

	prev := service.BackoffDelay(1)
	for attempt := 2; attempt <= 20; attempt++ {
		next := service.BackoffDelay(attempt)
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
	assert.Equal(t, prev, service.BackoffDelay(30))
}

func TestBackoffDelay_UsesConfiguredBaseAndCap(t *testing.T) {
	service := archivejob.NewService(newFakeRepository(), testLogger(), 0, 1*time.Second, 10*time.Second)

	assert.Equal(t, 1*time.Second, service.BackoffDelay(1))
	assert.Equal(t, 2*time.Second, service.BackoffDelay(2))
	assert.Equal(t, 10*time.Second, service.BackoffDelay(30))
}

func TestService_Recover_ReturnsStuckCount(t *testing.T) {
	repo := newFakeRepository()
	service := archivejob.NewService(repo, testLogger(), 0, 0, 0)

	id, err := service.CreatePending(context.Background(), "link-1")
	require.NoError(t, err)
	_, err = service.Claim(context.Background(), "worker-a")
	require.NoError(t, err)
	require.Equal(t, archivejob.StatusInProgress, repo.archives[id].Status)

	n, err := service.Recover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, archivejob.StatusPending, repo.archives[id].Status)
}
