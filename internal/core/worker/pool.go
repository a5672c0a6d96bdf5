// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package worker runs the archive job pool (C6, §4.6): a fixed number of
cooperative workers each loop claim → resolve → dispatch → upload/complete
(or fail), rate-limited per destination domain by a guard-channel semaphore
in the style of a classic fan-out crawler worker.
*/
package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/forumvault/archiver/internal/core/archivejob"
	"github.com/forumvault/archiver/internal/core/artifact"
	"github.com/forumvault/archiver/internal/core/feed"
	"github.com/forumvault/archiver/internal/core/registry"
	"github.com/forumvault/archiver/internal/platform/apperr"
	"github.com/forumvault/archiver/internal/platform/constants"
	"github.com/forumvault/archiver/internal/uploader"
	"github.com/forumvault/archiver/pkg/pointer"
)

// Uploader is the narrow surface the pool needs from the artifact uploader (C9).
type Uploader interface {
	Put(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
}

// Pinner is the narrow surface the pool needs from the optional IPFS client
// (C14). A nil Pinner disables pinning entirely — artifacts are still
// durably stored via [Uploader].
type Pinner interface {
	AddAndPin(ctx context.Context, filename string, data []byte) (string, error)
}

// Config bounds a worker [Pool]'s behavior.
type Config struct {
	WorkerCount          int
	PerDomainConcurrency int
	HandlerTimeout       time.Duration
	ClaimBackoff         time.Duration
	WorkDir              string
}

// Pool drives the archive job queue to completion (§4.6).
type Pool struct {
	jobs     *archivejob.Service
	links    feed.Repository
	registry *registry.Registry
	artifact artifact.Repository
	upload   Uploader
	pin      Pinner
	logger   *slog.Logger
	cfg      Config

	domainGuards   map[string]chan struct{}
	domainGuardsMu sync.Mutex

	inFlight int32

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Occupancy is a point-in-time snapshot of the pool's activity, for the ops
// surface's /stats endpoint (§4.11).
type Occupancy struct {
	WorkerCount int `json:"worker_count"`
	InFlight    int `json:"in_flight"`
}

// Occupancy reports how many of the pool's workers are currently processing
// a job.
func (p *Pool) Occupancy() Occupancy {
	return Occupancy{
		WorkerCount: p.cfg.WorkerCount,
		InFlight:    int(atomic.LoadInt32(&p.inFlight)),
	}
}

// NewPool constructs an archive worker [Pool].
func NewPool(jobs *archivejob.Service, links feed.Repository, reg *registry.Registry, artifacts artifact.Repository, upload Uploader, logger *slog.Logger, cfg Config) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = constants.DefaultWorkerCount
	}
	if cfg.PerDomainConcurrency <= 0 {
		cfg.PerDomainConcurrency = constants.DefaultPerDomainConcurrency
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = constants.DefaultHandlerTimeout
	}
	if cfg.ClaimBackoff <= 0 {
		cfg.ClaimBackoff = constants.DefaultClaimBackoff
	}
	return &Pool{
		jobs:         jobs,
		links:        links,
		registry:     reg,
		artifact:     artifacts,
		upload:       upload,
		logger:       logger,
		cfg:          cfg,
		domainGuards: make(map[string]chan struct{}),
	}
}

/*
Start recovers stuck in_progress jobs (§4.6 "Crash recovery"), then spawns
cfg.WorkerCount workers, each running the per-worker claim loop. Start
returns once recovery has run; the workers themselves run in the background.
*/
func (p *Pool) Start(ctx context.Context) error {
	if _, err := p.jobs.Recover(ctx); err != nil {
		return fmt.Errorf("worker: recover stuck archives: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.cfg.WorkerCount; i++ {
		workerID := fmt.Sprintf("worker-%d", i)
		p.wg.Add(1)
		go p.runWorker(ctx, workerID)
	}
	return nil
}

// SetPinner wires an optional IPFS pinner into the pool (C14). Call before
// Start; a pool with no pinner configured skips IPFS entirely.
func (p *Pool) SetPinner(pinner Pinner) {
	p.pin = pinner
}

// Stop signals every worker to exit at its next scheduling point and waits
// for in-flight jobs to reach a stopping point (§4.6 "Cancellation").
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Pool) runWorker(ctx context.Context, workerID string) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		archiveRow, err := p.jobs.Claim(ctx, workerID)
		if err != nil {
			p.logger.Error("claim_failed", slog.String("worker", workerID), slog.String("error", err.Error()))
			sleepOrDone(ctx, p.cfg.ClaimBackoff)
			continue
		}
		if archiveRow == nil {
			sleepOrDone(ctx, p.cfg.ClaimBackoff)
			continue
		}

		p.processJob(ctx, workerID, archiveRow)
	}
}

func (p *Pool) processJob(ctx context.Context, workerID string, archiveRow *archivejob.Archive) {
	atomic.AddInt32(&p.inFlight, 1)
	defer atomic.AddInt32(&p.inFlight, -1)

	link, err := p.links.FindLinkByID(ctx, archiveRow.LinkID)
	if err != nil || link == nil {
		p.failJob(ctx, archiveRow, fmt.Errorf("worker: resolve link %s: %w", archiveRow.LinkID, err))
		return
	}

	guard := p.guardFor(link.Domain)
	select {
	case guard <- struct{}{}:
		defer func() { <-guard }()
	case <-ctx.Done():
		return
	}

	handler := p.registry.Resolve(link.NormalizedURL, link.Domain)
	if handler == nil {
		p.failJob(ctx, archiveRow, fmt.Errorf("worker: no handler resolved for domain %q", link.Domain))
		return
	}

	jobCtx, jobCancel := context.WithTimeout(ctx, p.cfg.HandlerTimeout)
	defer jobCancel()

	result, handlerErr := p.runHandlerSafely(jobCtx, handler, archiveRow, link)
	if handlerErr != nil {
		p.failJob(ctx, archiveRow, handlerErr)
		return
	}

	if err := p.uploadAndComplete(ctx, archiveRow, result); err != nil {
		p.failJob(ctx, archiveRow, err)
		return
	}
}

// runHandlerSafely invokes the handler, converting a panic into a failure
// rather than taking the worker down with it (§4.6 step 7).
func (p *Pool) runHandlerSafely(ctx context.Context, handler registry.Handler, archiveRow *archivejob.Archive, link *feed.Link) (result registry.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker: handler %s panicked: %v", handler.Name(), r)
		}
	}()

	lastReport := time.Now()
	sinceReport := 0
	jobCtx := registry.JobContext{
		WorkDir: p.cfg.WorkDir,
		OnProgress: func(pct int, note string) {
			sinceReport++
			if time.Since(lastReport) < constants.ProgressCoalesceInterval && sinceReport < constants.ProgressCoalesceItems {
				return
			}
			lastReport = time.Now()
			sinceReport = 0
			payload, _ := json.Marshal(map[string]string{"note": note})
			_ = p.jobs.ReportProgress(ctx, archiveRow.ID, pct, string(payload))
		},
	}
	return handler.Run(ctx, jobCtx, link.NormalizedURL)
}

func (p *Pool) uploadAndComplete(ctx context.Context, archiveRow *archivejob.Archive, result registry.Result) error {
	newArtifacts := make([]artifact.NewArtifact, 0, len(result.Artifacts))
	for _, a := range result.Artifacts {
		sum := sha256.Sum256(a.Bytes)
		contentHash := hex.EncodeToString(sum[:])
		objectKey := uploader.ObjectKey(archiveRow.ID, a.Kind, a.Bytes, extensionFor(a.ContentType))

		if _, err := p.upload.Put(ctx, objectKey, a.Bytes, a.ContentType); err != nil {
			return err
		}

		var ipfsCid string
		if p.pin != nil {
			cid, err := p.pin.AddAndPin(ctx, objectKey, a.Bytes)
			if err != nil {
				p.logger.Warn("ipfs_pin_failed", slog.String("archive_id", archiveRow.ID), slog.String("kind", a.Kind), slog.String("error", err.Error()))
			} else {
				ipfsCid = cid
			}
		}

		newArtifacts = append(newArtifacts, artifact.NewArtifact{
			Kind:           a.Kind,
			ObjectKey:      objectKey,
			SizeBytes:      int64(len(a.Bytes)),
			PerceptualHash: a.Hints["perceptual_hash"],
			ContentHash:    contentHash,
			IPFSCid:        ipfsCid,
		})
	}

	indexJSON, err := json.Marshal(result.ArtifactIndex)
	if err != nil {
		return apperr.ProgrammerErr(fmt.Errorf("worker: marshal artifact index: %w", err))
	}
	indexStr := string(indexJSON)

	var titlePtr, mediaTypePtr *string
	if result.Title != "" {
		titlePtr = pointer.To(result.Title)
	}
	if result.MediaType != "" {
		mediaTypePtr = pointer.To(result.MediaType)
	}

	return p.artifact.CompleteWithArtifacts(ctx, archiveRow.ID, newArtifacts, archivejob.CompleteFields{
		Title:         titlePtr,
		MediaType:     mediaTypePtr,
		ArtifactIndex: pointer.To(indexStr),
	})
}

func (p *Pool) failJob(ctx context.Context, archiveRow *archivejob.Archive, handlerErr error) {
	if err := p.jobs.Fail(ctx, archiveRow, handlerErr); err != nil {
		p.logger.Error("record_failure_failed", slog.String("archive_id", archiveRow.ID), slog.String("error", err.Error()))
	}
}

func (p *Pool) guardFor(domain string) chan struct{} {
	p.domainGuardsMu.Lock()
	defer p.domainGuardsMu.Unlock()

	guard, ok := p.domainGuards[domain]
	if !ok {
		guard = make(chan struct{}, p.cfg.PerDomainConcurrency)
		p.domainGuards[domain] = guard
	}
	return guard
}

func sleepOrDone(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "text/html":
		return "html"
	case "application/pdf":
		return "pdf"
	case "video/mp4":
		return "mp4"
	case "application/json":
		return "json"
	case "text/plain":
		return "txt"
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	default:
		return "bin"
	}
}
