// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dedup_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumvault/archiver/internal/core/dedup"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func checkerImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x/8+y/8)%2 == 0 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestComputeImageHash_Deterministic(t *testing.T) {
	bytesPNG := encodePNG(t, checkerImage())

	h1, err := dedup.ComputeImageHash(bytesPNG)
	require.NoError(t, err)
	h2, err := dedup.ComputeImageHash(bytesPNG)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEmpty(t, h1)
}

func TestComputeImageHash_RejectsNonImageBytes(t *testing.T) {
	_, err := dedup.ComputeImageHash([]byte("not an image"))
	assert.Error(t, err)
}

func TestHashDistance_SameHashIsZero(t *testing.T) {
	bytesPNG := encodePNG(t, checkerImage())
	hash, err := dedup.ComputeImageHash(bytesPNG)
	require.NoError(t, err)

	distance, err := dedup.HashDistance(hash, hash)
	require.NoError(t, err)
	assert.Equal(t, 0, distance)
}

func TestIsDuplicate_DistinctSolidImagesAreNotDuplicates(t *testing.T) {
	whiteHash, err := dedup.ComputeImageHash(encodePNG(t, solidImage(color.White)))
	require.NoError(t, err)
	blackHash, err := dedup.ComputeImageHash(encodePNG(t, solidImage(color.Black)))
	require.NoError(t, err)

	assert.False(t, dedup.IsDuplicate(whiteHash, blackHash))
}

func TestIsDuplicate_IdenticalImageIsDuplicateOfItself(t *testing.T) {
	hash, err := dedup.ComputeImageHash(encodePNG(t, checkerImage()))
	require.NoError(t, err)

	assert.True(t, dedup.IsDuplicate(hash, hash))
}

func TestHashDistance_MalformedBase64ReturnsError(t *testing.T) {
	_, err := dedup.HashDistance("not-base64!!", "also-not-base64!!")
	assert.Error(t, err)
}
