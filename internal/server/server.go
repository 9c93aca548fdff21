// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server serves exported images and rendered documents over HTTP
// so that the image URLs written into the JSON resolve against a local
// filesystem store.
package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/docextract/internal/export"
	"github.com/pdiddy/docextract/internal/render"
	"github.com/pdiddy/docextract/internal/storage"
)

// Server exposes the fs store and the output directory.
type Server struct {
	store     *storage.FSStore
	bucket    string
	outputDir string
	logger    *slog.Logger
}

// New creates a Server. A nil logger uses slog.Default().
func New(store *storage.FSStore, bucket, outputDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, bucket: bucket, outputDir: outputDir, logger: logger}
}

// Routes returns the router with every endpoint registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP registers the endpoints on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get(render.ImageURLPrefix+"/{topic}/{documentId}/{image}", s.handleImage)
	r.Get("/api/documents/{documentId}", s.handleDocument)
}

// handleImage streams one exported image.
// GET /api/images/{topic}/{documentId}/{image}
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	key := strings.Join([]string{
		chi.URLParam(r, "topic"),
		chi.URLParam(r, "documentId"),
		chi.URLParam(r, "image"),
	}, "/")

	f, err := s.store.Open(s.bucket, key)
	if err != nil {
		s.fail(w, key, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", export.ContentType)
	http.ServeContent(w, r, chi.URLParam(r, "image"), time.Time{}, f)
}

// handleDocument returns the rendered JSON of one document.
// GET /api/documents/{documentId}
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "documentId")
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		http.Error(w, "invalid document id", http.StatusBadRequest)
		return
	}

	f, err := os.Open(filepath.Join(s.outputDir, id+".json"))
	if err != nil {
		s.fail(w, id, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.fail(w, id, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	http.ServeContent(w, r, id+".json", info.ModTime(), f)
}

func (s *Server) fail(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrInvalidKey):
		http.Error(w, "invalid path", http.StatusBadRequest)
	default:
		s.logger.Error("serving file", "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
