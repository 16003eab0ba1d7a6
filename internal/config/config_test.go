package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sdsConfigYAML = `
port: 6000
cache_location: /tmp/sdscache/
location_details:
  - location_name: ServiceDir
    location_type: localFile
    path: ./
  - location_name: minio
    location_type: minio
    minio_bucket: ndtdata
    location: 192.168.1.229:9000
    minio_access_key: minio
    minio_secret_key: miniostorage
`

func writeConfig(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "sds_config.yml")
	require.NoError(t, os.WriteFile(path, []byte(sdsConfigYAML), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(viper.New(), writeConfig(t), nil)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.True(t, cfg.UseCache)
	assert.Equal(t, "/tmp/sdscache/", cfg.CacheLocation)
	assert.Equal(t, int64(100000000), cfg.CacheMaxBytes)
	assert.Equal(t, 60, cfg.CheckCacheEvery)
	require.Len(t, cfg.LocationDetails, 2)

	l, ok := cfg.Location("minio")
	require.True(t, ok)
	assert.Equal(t, "ndtdata", l.MinioBucket)
	assert.Equal(t, "miniostorage", l.MinioSecretKey)

	_, ok = cfg.Location("nowhere")
	assert.False(t, ok)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	fs := pflag.NewFlagSet("sds", pflag.ContinueOnError)
	fs.Int("port", 5055, "")
	fs.Bool("debug", false, "")
	require.NoError(t, fs.Parse([]string{"--debug", "--port", "7000"}))

	cfg, err := Load(viper.New(), writeConfig(t), fs)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.True(t, cfg.Debug)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "none.yml"), nil)
	assert.Error(t, err)
}

func TestLocationJSONHidesCredentials(t *testing.T) {
	body, err := json.Marshal(Location{
		LocationName:   "minio",
		LocationType:   "minio",
		MinioBucket:    "ndtdata",
		MinioAccessKey: "minio",
		MinioSecretKey: "miniostorage",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"location_name":"minio","location_type":"minio","minio_bucket":"ndtdata"}`, string(body))
}
