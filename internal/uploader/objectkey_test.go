// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uploader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forumvault/archiver/internal/uploader"
)

func TestObjectKey_IsContentAddressedAndDeterministic(t *testing.T) {
	key1 := uploader.ObjectKey("arc-1", "html", []byte("hello"), "html")
	key2 := uploader.ObjectKey("arc-1", "html", []byte("hello"), "html")
	assert.Equal(t, key1, key2)
	assert.Contains(t, key1, "archives/arc-1/html/")
	assert.Contains(t, key1, ".html")
}

func TestObjectKey_DiffersWithDifferentBytes(t *testing.T) {
	key1 := uploader.ObjectKey("arc-1", "html", []byte("hello"), "html")
	key2 := uploader.ObjectKey("arc-1", "html", []byte("world"), "html")
	assert.NotEqual(t, key1, key2)
}

func TestObjectKey_OmitsExtensionWhenEmpty(t *testing.T) {
	key := uploader.ObjectKey("arc-1", "pdf", []byte("data"), "")
	assert.NotContains(t, key, ".")
}
