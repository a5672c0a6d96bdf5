// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ops

import (
	"net/http"

	"github.com/forumvault/archiver/internal/core/archivejob"
	"github.com/forumvault/archiver/internal/core/worker"
	"github.com/forumvault/archiver/internal/platform/respond"
)

// PoolOccupancy is the narrow surface /stats needs from the archive worker
// pool (C6).
type PoolOccupancy interface {
	Occupancy() worker.Occupancy
}

type statsHandler struct {
	jobs *archivejob.Service
	pool PoolOccupancy
}

// NewStatsHandler constructs the /stats [http.HandlerFunc].
func NewStatsHandler(jobs *archivejob.Service, pool PoolOccupancy) http.HandlerFunc {
	handler := &statsHandler{jobs: jobs, pool: pool}
	return handler.serve
}

// statsResponse is the JSON snapshot returned by GET /stats (§4.11).
type statsResponse struct {
	Archives struct {
		Pending    int `json:"pending"`
		InProgress int `json:"in_progress"`
		Complete   int `json:"complete"`
		Failed     int `json:"failed"`
	} `json:"archives"`
	Pool worker.Occupancy `json:"pool"`
}

func (handler *statsHandler) serve(writer http.ResponseWriter, request *http.Request) {
	counts, err := handler.jobs.StatusCounts(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body statsResponse
	body.Archives.Pending = counts[archivejob.StatusPending]
	body.Archives.InProgress = counts[archivejob.StatusInProgress]
	body.Archives.Complete = counts[archivejob.StatusComplete]
	body.Archives.Failed = counts[archivejob.StatusFailed]
	if handler.pool != nil {
		body.Pool = handler.pool.Occupancy()
	}

	respond.OK(writer, body)
}
