// Package datasource opens instrument files from the configured
// locations: local directories, or MinIO buckets mirrored into the local
// cache.
package datasource

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spectriclabs/ndt-readers/internal/cache"
	"github.com/spectriclabs/ndt-readers/internal/config"
)

const (
	LocalFile = "localFile"
	Minio     = "minio"
)

var (
	ErrUnknownLocation     = errors.New("datasource: unknown location")
	ErrUnsupportedLocation = errors.New("datasource: unsupported location type")
)

// File is one directory listing entry.
type File struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
}

// DataSource resolves location names against a configuration.
type DataSource struct {
	Cfg    *config.Configuration
	Cache  *cache.Cache
	Logger *zap.Logger
}

func New(cfg *config.Configuration, c *cache.Cache, logger *zap.Logger) *DataSource {
	return &DataSource{Cfg: cfg, Cache: c, Logger: logger}
}

func (d *DataSource) location(locationName string) (config.Location, error) {
	l, ok := d.Cfg.Location(locationName)
	if !ok {
		return l, errors.Wrap(ErrUnknownLocation, locationName)
	}
	return l, nil
}

// localPath joins fileName under root. The name is cleaned as an absolute
// path first, so ".." never climbs above root.
func localPath(root, fileName string) string {
	return filepath.Join(root, filepath.FromSlash(path.Clean("/"+fileName)))
}

// Open returns a reader for fileName within the named location. The
// caller closes it.
func (d *DataSource) Open(ctx context.Context, locationName string, fileName string) (io.ReadSeekCloser, error) {
	currentLocation, err := d.location(locationName)
	if err != nil {
		return nil, err
	}

	switch currentLocation.LocationType {
	case LocalFile:
		fullFilepath := localPath(currentLocation.Path, fileName)
		d.Logger.Info(
			"Reading local file",
			zap.String("location_name", locationName),
			zap.String("filename", fileName),
			zap.String("path", fullFilepath),
		)
		file, err := os.Open(fullFilepath)
		if err != nil {
			return nil, errors.Wrap(err, "datasource: open")
		}
		return file, nil
	case Minio:
		return d.openMinio(ctx, currentLocation, fileName)
	}
	return nil, errors.Wrapf(ErrUnsupportedLocation, "%s in %s", currentLocation.LocationType, locationName)
}

func (d *DataSource) openMinio(ctx context.Context, currentLocation config.Location, fileName string) (io.ReadSeekCloser, error) {
	start := time.Now()
	objectName := strings.TrimPrefix(path.Join(currentLocation.Path, fileName), "/")
	cacheFileName := cache.FileName(currentLocation.Location, currentLocation.MinioBucket, objectName)
	if file, err := d.Cache.GetItemFromCache(cacheFileName, cache.MinioDir); err == nil {
		d.Logger.Debug("MinIO object served from cache", zap.String("object", objectName))
		return file, nil
	}

	d.Logger.Info("MinIO object not in local cache, fetching",
		zap.String("bucket", currentLocation.MinioBucket),
		zap.String("object", objectName),
	)
	minioClient, err := minio.New(
		currentLocation.Location,
		&minio.Options{
			Creds:  credentials.NewStaticV4(currentLocation.MinioAccessKey, currentLocation.MinioSecretKey, ""),
			Secure: currentLocation.MinioSecure,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "datasource: minio connection")
	}

	object, err := minioClient.GetObject(ctx, currentLocation.MinioBucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "datasource: minio get")
	}
	defer object.Close()
	fileData, err := io.ReadAll(object)
	if err != nil {
		return nil, errors.Wrap(err, "datasource: minio read")
	}

	if err := d.Cache.PutItemInCache(cacheFileName, cache.MinioDir, fileData); err != nil {
		return nil, err
	}
	file, err := d.Cache.GetItemFromCache(cacheFileName, cache.MinioDir)
	if err != nil {
		return nil, errors.Wrap(err, "datasource: open cached object")
	}
	d.Logger.Info("Fetched MinIO object",
		zap.String("object", objectName),
		zap.Int("bytes", len(fileData)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return file, nil
}

// IsDir reports whether fileName in a localFile location is a directory.
// Browsing is only supported for localFile locations.
func (d *DataSource) IsDir(locationName string, fileName string) (bool, error) {
	currentLocation, err := d.location(locationName)
	if err != nil {
		return false, err
	}
	if currentLocation.LocationType != LocalFile {
		return false, errors.Wrapf(ErrUnsupportedLocation, "browsing %s", currentLocation.LocationType)
	}
	full := localPath(currentLocation.Path, fileName)
	fi, err := os.Stat(full)
	if err != nil {
		return false, errors.Wrap(err, "datasource: stat")
	}
	return fi.IsDir(), nil
}

// List returns the entries of a directory in a localFile location.
func (d *DataSource) List(locationName string, dirName string) ([]File, error) {
	currentLocation, err := d.location(locationName)
	if err != nil {
		return nil, err
	}
	// TODO: list MinIO buckets through ListObjects.
	if currentLocation.LocationType != LocalFile {
		return nil, errors.Wrapf(ErrUnsupportedLocation, "listing %s", currentLocation.LocationType)
	}
	full := localPath(currentLocation.Path, dirName)
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, errors.Wrap(err, "datasource: list")
	}
	filelist := make([]File, len(entries))
	for i, entry := range entries {
		filelist[i].Filename = entry.Name()
		filelist[i].Type = "file"
		if entry.IsDir() {
			filelist[i].Type = "directory"
		}
	}
	return filelist, nil
}
