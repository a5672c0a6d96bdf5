// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package dedup computes perceptual image hashes and compares them by Hamming
distance so the worker pool can suppress visually-duplicate artifacts (§4.4).

Hashing uses a 16×16 gradient grid, matching the grid size the source system
derived its perceptual fingerprint from; hashes are serialized to base64 so
they can be stored directly on the Artifact row as a string column.
*/
package dedup

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	// Registered decoders so image.Decode recognizes common artifact formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"

	"github.com/forumvault/archiver/internal/platform/apperr"
	"github.com/forumvault/archiver/internal/platform/constants"
)

const hashGridSize = 16

// ComputeImageHash decodes image bytes and returns a base64-encoded
// perceptual hash. It fails with a ParseError-kind [apperr.AppError] when the
// bytes are not a recognizable image.
func ComputeImageHash(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", apperr.ParseErr(fmt.Errorf("dedup: decode image: %w", err))
	}

	hash, err := goimagehash.ExtDifferenceHash(img, hashGridSize, hashGridSize)
	if err != nil {
		return "", apperr.ParseErr(fmt.Errorf("dedup: compute hash: %w", err))
	}

	dumped, err := hash.Dump()
	if err != nil {
		return "", apperr.ParseErr(fmt.Errorf("dedup: serialize hash: %w", err))
	}

	return base64.StdEncoding.EncodeToString(dumped), nil
}

// HashDistance returns the Hamming distance between two base64-encoded
// perceptual hashes. It fails with a ParseError-kind [apperr.AppError] when
// either hash cannot be decoded.
func HashDistance(h1, h2 string) (int, error) {
	hash1, err := decodeHash(h1)
	if err != nil {
		return 0, err
	}
	hash2, err := decodeHash(h2)
	if err != nil {
		return 0, err
	}

	distance, err := hash1.Distance(hash2)
	if err != nil {
		return 0, apperr.ParseErr(fmt.Errorf("dedup: compare hashes: %w", err))
	}
	return distance, nil
}

func decodeHash(encoded string) (*goimagehash.ExtImageHash, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperr.ParseErr(fmt.Errorf("dedup: decode base64 hash: %w", err))
	}
	hash, err := goimagehash.LoadExtImageHash(raw)
	if err != nil {
		return nil, apperr.ParseErr(fmt.Errorf("dedup: load hash: %w", err))
	}
	return hash, nil
}

// IsDuplicate reports whether two hashes are within [constants.DedupHashThreshold]
// of each other. A comparison failure is treated as "not a duplicate" rather
// than propagated — callers that need the error should call [HashDistance]
// directly.
func IsDuplicate(h1, h2 string) bool {
	distance, err := HashDistance(h1, h2)
	if err != nil {
		return false
	}
	return distance <= constants.DedupHashThreshold
}
