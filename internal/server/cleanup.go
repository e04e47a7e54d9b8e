package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// tempFilePrefix and tempFileSuffix name in-flight uploads in the temp dir.
const (
	tempFilePrefix = "ppt-upload-"
	tempFileSuffix = ".part"
)

// CleanupConfig controls the sweep of files left behind by interrupted
// uploads: temp parts in the temp dir and staging copies in the upload dir.
type CleanupConfig struct {
	Schedule  string // standard 5-field cron spec or descriptor such as "@every 1h"
	MaxAge    time.Duration
	TempDir   string
	UploadDir string
}

func (c Config) cleanupConfig() CleanupConfig {
	tempDir := c.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return CleanupConfig{
		Schedule:  c.CleanupSchedule,
		MaxAge:    c.CleanupMaxAge,
		TempDir:   tempDir,
		UploadDir: c.UploadDir,
	}
}

// StartCleanupJob sweeps once immediately and then on Schedule until ctx is
// done. An empty Schedule or a zero MaxAge disables it.
func StartCleanupJob(ctx context.Context, logger *slog.Logger, cfg CleanupConfig) error {
	if cfg.Schedule == "" || cfg.MaxAge <= 0 {
		logger.Info("cleanup disabled")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() { runCleanup(logger, cfg, time.Now()) }); err != nil {
		return fmt.Errorf("cleanup schedule %q: %w", cfg.Schedule, err)
	}

	logger.Info("cleanup starting", "schedule", cfg.Schedule, "max_age", cfg.MaxAge)

	// Run immediately on start
	runCleanup(logger, cfg, time.Now())

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("cleanup shutting down")
	return nil
}

func runCleanup(logger *slog.Logger, cfg CleanupConfig, now time.Time) int {
	start := time.Now()
	cutoff := now.Add(-cfg.MaxAge)

	deleted := sweepDir(logger, cfg.TempDir, cutoff, isTempPartName)
	deleted += sweepDir(logger, cfg.UploadDir, cutoff, isStagingName)

	logger.Debug("cleanup complete", "deleted", deleted, "duration_ms", time.Since(start).Milliseconds())
	return deleted
}

// sweepDir removes regular files in dir whose name matches and whose
// modification time is before cutoff. It returns how many were removed.
func sweepDir(logger *slog.Logger, dir string, cutoff time.Time, match func(string) bool) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("cleanup read dir", "dir", dir, "err", err)
		}
		return 0
	}

	deleted := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !match(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		p := filepath.Join(dir, e.Name())
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("cleanup remove", "path", p, "err", err)
			continue
		}
		deleted++
	}
	return deleted
}

func isTempPartName(name string) bool {
	return strings.HasPrefix(name, tempFilePrefix) && strings.HasSuffix(name, tempFileSuffix)
}

// RunCleanup blocks running the sweep for this server's directories until
// ctx is done.
func (s *Server) RunCleanup(ctx context.Context) error {
	return StartCleanupJob(ctx, s.logger, s.cfg.cleanupConfig())
}
