// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docextract/internal/config"
	"github.com/pdiddy/docextract/internal/server"
	"github.com/pdiddy/docextract/internal/storage"
	"github.com/pdiddy/docextract/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve exported images and rendered documents over HTTP",
	Long: `Serve exposes the local filesystem store under /api/images/ so that
image URLs in the rendered JSON resolve, and serves each rendered
document at /api/documents/{documentId}.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")

	if cfg.Storage.Backend != types.StorageFS {
		logger.Warn("storage backend is not fs; images are served from the local root only",
			"backend", cfg.Storage.Backend, "root", cfg.Storage.Root)
	}
	bucket := cfg.Storage.Bucket
	if bucket == "" {
		bucket = config.DefaultFSBucket
	}

	srv := server.New(storage.NewFSStore(cfg.Storage.Root), bucket, cfg.OutputDir, logger)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "root", cfg.Storage.Root, "bucket", bucket)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
