// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ipfs pins completed artifacts to an IPFS node over its Kubo RPC API
(C14, optional per §4). This is the one component built directly on the
standard library rather than a third-party client: Kubo's RPC surface is a
handful of multipart POST endpoints, and no example repository in this
pipeline's lineage talks to IPFS, so there is no corpus client to follow —
net/http covers the whole protocol with less surface than adopting an
unfamiliar SDK for three calls.
*/
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/forumvault/archiver/internal/platform/apperr"
)

// Client talks to a Kubo node's HTTP RPC API.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// New constructs an IPFS [Client] against a Kubo RPC endpoint
// (e.g. "http://127.0.0.1:5001").
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient, endpoint: endpoint}
}

type addResponse struct {
	Hash string `json:"Hash"`
}

// Add uploads data to the node's block store and returns its CID, without
// pinning it (mirrors `ipfs add --pin=false`).
func (c *Client) Add(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", apperr.ProgrammerErr(fmt.Errorf("ipfs: build multipart: %w", err))
	}
	if _, err := part.Write(data); err != nil {
		return "", apperr.ProgrammerErr(fmt.Errorf("ipfs: write multipart body: %w", err))
	}
	if err := writer.Close(); err != nil {
		return "", apperr.ProgrammerErr(fmt.Errorf("ipfs: close multipart: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/v0/add?pin=false", &body)
	if err != nil {
		return "", apperr.ProgrammerErr(fmt.Errorf("ipfs: build request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.TransientNetwork(fmt.Errorf("ipfs: add: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", apperr.StorageErr(fmt.Errorf("ipfs: add returned status %d", resp.StatusCode))
	}

	var parsed addResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperr.ParseErr(fmt.Errorf("ipfs: decode add response: %w", err))
	}
	return parsed.Hash, nil
}

// Pin recursively pins an already-added CID so it survives garbage collection.
func (c *Client) Pin(ctx context.Context, cid string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/v0/pin/add?arg=%s", c.endpoint, cid), nil)
	if err != nil {
		return apperr.ProgrammerErr(fmt.Errorf("ipfs: build request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.TransientNetwork(fmt.Errorf("ipfs: pin: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return apperr.StorageErr(fmt.Errorf("ipfs: pin returned status %d: %s", resp.StatusCode, body))
	}
	return nil
}

// AddAndPin is the common case: add the bytes, then pin the resulting CID.
func (c *Client) AddAndPin(ctx context.Context, filename string, data []byte) (string, error) {
	cid, err := c.Add(ctx, filename, data)
	if err != nil {
		return "", err
	}
	if err := c.Pin(ctx, cid); err != nil {
		return "", err
	}
	return cid, nil
}
