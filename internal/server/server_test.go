// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docextract/internal/render"
	"github.com/pdiddy/docextract/internal/storage"
)

// --- test helpers ---

func testServer(t *testing.T) (*httptest.Server, *storage.FSStore, string) {
	t.Helper()
	store := storage.NewFSStore(t.TempDir())
	outDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(New(store, "images", outDir, logger).Routes())
	t.Cleanup(ts.Close)
	return ts, store, outDir
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// --- tests ---

func TestServeImage(t *testing.T) {
	ts, store, _ := testServer(t)
	key := render.ImageKey("heartdisease", "doc-1", 2)
	require.NoError(t, store.Put(context.Background(), "images", key, []byte("jpeg-bytes"), "image/jpeg"))

	resp, body := get(t, ts.URL+render.ImageURL("heartdisease", "doc-1", 2))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "jpeg-bytes", body)
}

func TestServeImage_Range(t *testing.T) {
	ts, store, _ := testServer(t)
	require.NoError(t, store.Put(context.Background(), "images", "t/d/image_001.jpg", []byte("0123456789"), "image/jpeg"))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/images/t/d/image_001.jpg", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=2-4")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "234", string(body))
}

func TestServeImage_NotFound(t *testing.T) {
	ts, _, _ := testServer(t)
	resp, _ := get(t, ts.URL+"/api/images/t/d/image_009.jpg")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeImage_InvalidKey(t *testing.T) {
	ts, _, _ := testServer(t)
	resp, _ := get(t, ts.URL+"/api/images/t/d/..%2F..%2Fsecret")
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusNotFound}, resp.StatusCode)
}

func TestServeDocument(t *testing.T) {
	ts, _, outDir := testServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "doc-1.json"), []byte(`{"article_title": "T"}`), 0o644))

	resp, body := get(t, ts.URL+"/api/documents/doc-1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"article_title": "T"}`, body)
}

func TestServeDocument_Errors(t *testing.T) {
	ts, _, _ := testServer(t)

	resp, _ := get(t, ts.URL+"/api/documents/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/api/documents/..")
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	ts, _, _ := testServer(t)
	resp, _ := get(t, ts.URL+"/api/other")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
