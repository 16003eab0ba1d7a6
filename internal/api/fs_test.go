package api_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spectriclabs/ndt-readers/internal/api"
	"github.com/spectriclabs/ndt-readers/internal/config"
)

var sdsConfigString string = `[{"location_name":"ServiceDir","location_type":"localFile","path":"%s"},{"location_name":"minio","location_type":"minio","minio_bucket":"ndtdata","location":"192.168.1.229:9000"}]`

// uvExport is a two block UltraVision export with 1x2 positions and 3
// samples per A-scan.
func uvExport() string {
	var b strings.Builder
	for k := 0; k < 2; k++ {
		lines := []string{
			fmt.Sprintf("Focal Law = %d", k+1),
			"ScanStart (mm) = 0", "ScanResol (mm) = 1", "ScanQty = 1",
			"IndexStart (mm) = 0", "IndexResol (mm) = 1", "IndexQty = 2",
			"USoundStart (Half Path) (mm) = 3.26", "USoundResol (mm) = 0.5", "USoundQty = 3",
		}
		for len(lines) < 19 {
			lines = append(lines, fmt.Sprintf("Spare %d = x", len(lines)))
		}
		b.WriteString(strings.Join(lines, "\n") + "\n")
		b.WriteString("1\t2\t3\t\n4\t5\t6\t\n")
	}
	return b.String()
}

func setupAPI(t *testing.T) (*api.API, string) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pa"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pa", "export.txt"), []byte(uvExport()), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("notes"), 0644))

	sdsConfig := config.Configuration{
		CacheLocation: t.TempDir(),
		LocationDetails: []config.Location{
			{LocationName: "ServiceDir", LocationType: "localFile", Path: root},
			{LocationName: "minio", LocationType: "minio", MinioBucket: "ndtdata", Location: "192.168.1.229:9000", MinioAccessKey: "minio", MinioSecretKey: "miniostorage"},
		},
	}
	return api.NewSDSAPI(&sdsConfig, zap.NewNop()), root
}

func request(t *testing.T, handler echo.HandlerFunc, url, location, path string) *httptest.ResponseRecorder {
	e := echo.New()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if location != "" {
		c.SetParamNames("location", "*")
		c.SetParamValues(location, path)
	}
	require.NoError(t, handler(c))
	return rec
}

func TestFS(t *testing.T) {
	a, root := setupAPI(t)
	rec := request(t, a.GetFileLocations, "/sds/fs", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fmt.Sprintf(sdsConfigString, root), strings.TrimSpace(rec.Body.String()))
}

func TestFSDir(t *testing.T) {
	a, _ := setupAPI(t)
	rec := request(t, a.GetFileOrDirectory, "/sds/fs/ServiceDir/", "ServiceDir", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"filename":"notes.md","type":"file"},{"filename":"pa","type":"directory"}]`, rec.Body.String())
}

func TestFSFile(t *testing.T) {
	a, _ := setupAPI(t)
	rec := request(t, a.GetFileOrDirectory, "/sds/fs/ServiceDir/notes.md", "ServiceDir", "notes.md")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "notes", rec.Body.String())

	rec = request(t, a.GetFileOrDirectory, "/sds/fs/ServiceDir/none.md", "ServiceDir", "none.md")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFSMinio(t *testing.T) {
	a, _ := setupAPI(t)
	rec := request(t, a.GetFileOrDirectory, "/sds/fs/minio/", "minio", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(t, a.GetFileOrDirectory, "/sds/fs/elsewhere/", "elsewhere", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
