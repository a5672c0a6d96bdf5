// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uploader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ObjectKey derives the content-addressed key an artifact is stored under
// (§4.10): archives/{archive_id}/{kind}/{sha256}.{ext}.
func ObjectKey(archiveID, kind string, data []byte, ext string) string {
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if ext != "" {
		return fmt.Sprintf("archives/%s/%s/%s.%s", archiveID, kind, digest, ext)
	}
	return fmt.Sprintf("archives/%s/%s/%s", archiveID, kind, digest)
}
