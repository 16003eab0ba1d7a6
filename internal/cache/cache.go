package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MinioDir holds objects fetched from MinIO locations.
const MinioDir = "miniocache"

type Cache struct {
	Location string
}

// FileName forms the cached file name for an object: the xxhash digest
// of its parts, keeping the extension of the last part so the format can
// still be read from the name.
func FileName(parts ...string) string {
	key := strings.Join(parts, "/")
	ext := ""
	if len(parts) > 0 {
		ext = strings.ToLower(filepath.Ext(parts[len(parts)-1]))
	}
	return fmt.Sprintf("%016x%s", xxhash.Sum64String(key), ext)
}

// isCacheFile reports whether name looks like something FileName made.
func isCacheFile(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if len(base) != 16 {
		return false
	}
	for _, r := range base {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

func (c *Cache) path(subDir, cacheFileName string) string {
	return filepath.Join(c.Location, subDir, cacheFileName)
}

// GetItemFromCache opens `cacheFileName` within a `subDir` directory.
func (c *Cache) GetItemFromCache(cacheFileName string, subDir string) (*os.File, error) {
	return os.Open(c.path(subDir, cacheFileName))
}

// PutItemInCache places `data` into file denoted by `cacheFileName`
// within `subDir`, creating the directory if needed.
func (c *Cache) PutItemInCache(cacheFileName string, subDir string, data []byte) error {
	fullPath := c.path(subDir, cacheFileName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return errors.Wrap(err, "cache: create directory")
	}
	// write then rename so readers never see a partial object
	tmp := fullPath + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "cache: write")
	}
	return errors.Wrap(os.Rename(tmp, fullPath), "cache: commit")
}

// Purge removes the oldest cache files in cachePath until the files left
// total at most maxBytes. It returns how many files were removed.
func Purge(logger *zap.Logger, cachePath string, maxBytes int64) (int, error) {
	entries, err := os.ReadDir(cachePath)
	if err != nil {
		return 0, err
	}

	var files []os.FileInfo
	var currentBytes int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !isCacheFile(info.Name()) {
			logger.Debug("Skipping file not written by the cache", zap.String("file", info.Name()))
			continue
		}
		files = append(files, info)
		currentBytes += info.Size()
	}

	removed := 0
	for currentBytes > maxBytes && len(files) > 0 {
		oldest := 0
		for i, f := range files {
			if f.ModTime().Before(files[oldest].ModTime()) {
				oldest = i
			}
		}
		f := files[oldest]
		logger.Info("Cache over maximum, removing old file",
			zap.String("file", f.Name()),
			zap.Int64("cache_bytes", currentBytes),
			zap.Int64("max_bytes", maxBytes),
		)
		if err := os.Remove(filepath.Join(cachePath, f.Name())); err != nil {
			return removed, errors.Wrap(err, "cache: remove")
		}
		currentBytes -= f.Size()
		files = append(files[:oldest], files[oldest+1:]...)
		removed++
	}
	return removed, nil
}

// CheckCache runs Purge every `checkInterval` until ctx is done.
func CheckCache(ctx context.Context, logger *zap.Logger, cachePath string, checkInterval time.Duration, maxBytes int64) {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		if _, err := Purge(logger, cachePath, maxBytes); err != nil {
			logger.Error("CheckCache error", zap.String("path", cachePath), zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
