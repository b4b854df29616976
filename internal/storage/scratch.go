package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// StorageError represents a storage-related failure
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StorageError) Error() string {
	msg := fmt.Sprintf("storage error during %s", e.Operation)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

const (
	DefaultScratchPath = "tmp/docbridge"
	DefaultScratchTTL  = time.Hour
)

// ScratchConfig holds configuration for the scratch manager
type ScratchConfig struct {
	BasePath   string
	DefaultTTL time.Duration
	Logger     *slog.Logger // Optional: defaults to a discarding logger
	FileSystem afero.Fs     // Optional: defaults to the OS filesystem
}

// ScratchStats summarizes the content of the scratch directory
type ScratchStats struct {
	Files  int64     `json:"files"`
	Bytes  int64     `json:"bytes"`
	Oldest time.Time `json:"oldest"`
}

// ScratchManager owns the directory where intermediate conversion files live.
// Files are named by UUID so concurrent conversions never collide.
type ScratchManager struct {
	basePath   string
	defaultTTL time.Duration
	logger     *slog.Logger
	fs         afero.Fs
}

// NewScratchManager creates the scratch directory and its manager
func NewScratchManager(config ScratchConfig) (*ScratchManager, error) {
	ctx := context.Background()

	if config.BasePath == "" {
		config.BasePath = DefaultScratchPath
	}
	if config.DefaultTTL == 0 {
		config.DefaultTTL = DefaultScratchTTL
	}
	if config.FileSystem == nil {
		config.FileSystem = afero.NewOsFs()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := config.FileSystem.MkdirAll(config.BasePath, 0o755); err != nil {
		config.Logger.ErrorContext(ctx, "failed to create scratch directory",
			"error", err,
			"path", config.BasePath,
			"operation", "init",
		)
		return nil, &StorageError{
			Operation: "init - create directory",
			Path:      config.BasePath,
			Err:       err,
		}
	}

	config.Logger.InfoContext(ctx, "scratch manager initialized",
		"base_path", config.BasePath,
		"default_ttl", config.DefaultTTL,
	)

	return &ScratchManager{
		basePath:   config.BasePath,
		defaultTTL: config.DefaultTTL,
		logger:     config.Logger,
		fs:         config.FileSystem,
	}, nil
}

// Path returns the scratch directory
func (sm *ScratchManager) Path() string {
	return sm.basePath
}

// DefaultTTL returns the age after which Cleanup(0) removes a file
func (sm *ScratchManager) DefaultTTL() time.Duration {
	return sm.defaultTTL
}

// TempPath returns a fresh, not yet existing path in the scratch directory ending in ext.
// The directory is recreated if something removed it.
func (sm *ScratchManager) TempPath(ext string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if err := sm.fs.MkdirAll(sm.basePath, 0o755); err != nil {
		return "", &StorageError{
			Operation: "allocate scratch file",
			Path:      sm.basePath,
			Err:       err,
		}
	}
	return filepath.Join(sm.basePath, uuid.NewString()+ext), nil
}

// Cleanup removes entries older than ttl (the default TTL when zero) and returns how
// many were removed
func (sm *ScratchManager) Cleanup(ttl time.Duration) (int64, error) {
	ctx := context.Background()
	if ttl <= 0 {
		ttl = sm.defaultTTL
	}

	entries, err := afero.ReadDir(sm.fs, sm.basePath)
	if err != nil {
		sm.logger.ErrorContext(ctx, "failed to read directory for cleanup",
			"error", err,
			"dir", sm.basePath,
		)
		return 0, &StorageError{
			Operation: "cleanup",
			Path:      sm.basePath,
			Err:       err,
		}
	}

	cutoff := time.Now().Add(-ttl)
	var removed int64
	for _, entry := range entries {
		if !entry.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(sm.basePath, entry.Name())
		remove := sm.fs.Remove
		if entry.IsDir() {
			remove = sm.fs.RemoveAll
		}
		if err := remove(path); err != nil {
			sm.logger.WarnContext(ctx, "failed to remove expired scratch entry",
				"error", err,
				"path", path,
			)
			continue
		}
		removed++
	}

	sm.logger.InfoContext(ctx, "scratch cleanup completed",
		"removed", removed,
		"ttl", ttl,
	)

	return removed, nil
}

// Stats counts the files in the scratch directory
func (sm *ScratchManager) Stats() (ScratchStats, error) {
	var stats ScratchStats
	entries, err := afero.ReadDir(sm.fs, sm.basePath)
	if err != nil {
		sm.logger.ErrorContext(context.Background(), "failed to read directory for stats",
			"error", err,
			"dir", sm.basePath,
		)
		return stats, &StorageError{
			Operation: "stats",
			Path:      sm.basePath,
			Err:       err,
		}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stats.Files++
		stats.Bytes += entry.Size()
		if stats.Oldest.IsZero() || entry.ModTime().Before(stats.Oldest) {
			stats.Oldest = entry.ModTime()
		}
	}
	return stats, nil
}

// IsAccessible checks that the scratch directory exists
func (sm *ScratchManager) IsAccessible() bool {
	ok, err := afero.DirExists(sm.fs, sm.basePath)
	return err == nil && ok
}

// StartCleanupRoutine removes expired scratch files every interval until ctx is done
func (sm *ScratchManager) StartCleanupRoutine(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed, err := sm.Cleanup(ttl); err == nil && removed > 0 {
					sm.logger.InfoContext(ctx, "periodic scratch cleanup completed",
						"removed", removed,
						"interval", interval,
						"ttl", ttl,
					)
				}
			}
		}
	}()
}
