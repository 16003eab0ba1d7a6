package datasource

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spectriclabs/ndt-readers/internal/cache"
	"github.com/spectriclabs/ndt-readers/internal/config"
)

func setup(t *testing.T) (*DataSource, string) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scans"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "scans", "export.txt"), []byte("Focal Law = 1\n"), 0644))

	cfg := &config.Configuration{
		LocationDetails: []config.Location{
			{LocationName: "TestDir", LocationType: LocalFile, Path: root},
			{LocationName: "bucket", LocationType: Minio, Location: "127.0.0.1:9", MinioBucket: "ndtdata"},
			{LocationName: "ftp", LocationType: "ftp"},
		},
	}
	c := &cache.Cache{Location: t.TempDir()}
	return New(cfg, c, zap.NewNop()), root
}

func readAll(t *testing.T, r io.ReadCloser) string {
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(body)
}

func TestOpenLocalFile(t *testing.T) {
	d, _ := setup(t)
	r, err := d.Open(context.Background(), "TestDir", "scans/export.txt")
	require.NoError(t, err)
	assert.Equal(t, "Focal Law = 1\n", readAll(t, r))

	r, err = d.Open(context.Background(), "TestDir", "../../scans/export.txt")
	require.NoError(t, err, "dot-dot stays inside the location")
	r.Close()

	_, err = d.Open(context.Background(), "TestDir", "scans/missing.txt")
	assert.True(t, errors.Is(err, os.ErrNotExist), "%v", err)
}

func TestOpenErrors(t *testing.T) {
	d, _ := setup(t)
	_, err := d.Open(context.Background(), "nowhere", "a.txt")
	assert.True(t, errors.Is(err, ErrUnknownLocation), "%v", err)

	_, err = d.Open(context.Background(), "ftp", "a.txt")
	assert.True(t, errors.Is(err, ErrUnsupportedLocation), "%v", err)
}

func TestOpenMinioFromCache(t *testing.T) {
	d, _ := setup(t)
	name := cache.FileName("127.0.0.1:9", "ndtdata", "scans/export.txt")
	require.NoError(t, d.Cache.PutItemInCache(name, cache.MinioDir, []byte("cached")))

	r, err := d.Open(context.Background(), "bucket", "/scans/export.txt")
	require.NoError(t, err)
	assert.Equal(t, "cached", readAll(t, r))
}

func TestListAndIsDir(t *testing.T) {
	d, _ := setup(t)
	files, err := d.List("TestDir", "")
	require.NoError(t, err)
	assert.Equal(t, []File{{Filename: "scans", Type: "directory"}}, files)

	files, err = d.List("TestDir", "scans")
	require.NoError(t, err)
	assert.Equal(t, []File{{Filename: "export.txt", Type: "file"}}, files)

	dir, err := d.IsDir("TestDir", "scans")
	require.NoError(t, err)
	assert.True(t, dir)
	dir, err = d.IsDir("TestDir", "scans/export.txt")
	require.NoError(t, err)
	assert.False(t, dir)

	_, err = d.List("bucket", "")
	assert.True(t, errors.Is(err, ErrUnsupportedLocation))
	_, err = d.IsDir("bucket", "")
	assert.True(t, errors.Is(err, ErrUnsupportedLocation))
}
