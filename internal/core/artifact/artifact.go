// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package artifact owns the Artifact rows a handler's output produces (§3,
§4.6 step 5): one row per uploaded byte-stream, named by kind, keyed to its
object-store location and (for images) its perceptual hash.
*/
package artifact

import "time"

// Artifact is one uploaded byte-stream belonging to an Archive.
type Artifact struct {
	ID             string    `json:"id"`
	ArchiveID      string    `json:"archive_id"`
	Kind           string    `json:"kind"`
	ObjectKey      string    `json:"object_key"`
	SizeBytes      int64     `json:"size_bytes"`
	PerceptualHash string    `json:"perceptual_hash,omitempty"`
	ContentHash    string    `json:"content_hash"`
	IPFSCid        string    `json:"ipfs_cid,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewArtifact bundles the fields CompleteWithArtifacts needs to insert one
// Artifact row, before the ID/CreatedAt are assigned.
type NewArtifact struct {
	Kind           string
	ObjectKey      string
	SizeBytes      int64
	PerceptualHash string
	ContentHash    string
	IPFSCid        string
}
