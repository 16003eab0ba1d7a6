package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *API) GetFileLocations(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Cfg.LocationDetails)
}

// GetFileOrDirectory lists a directory, or streams a file's raw bytes.
func (a *API) GetFileOrDirectory(c echo.Context) error {
	filePath := c.Param("*")
	locationName := c.Param("location")

	isDir, err := a.Source.IsDir(locationName, filePath)
	if err != nil {
		return a.fail(c, err)
	}
	if isDir {
		a.Logger.Debug("Path is a directory; returning directory listing", zap.String("path", filePath))
		files, err := a.Source.List(locationName, filePath)
		if err != nil {
			return a.fail(c, err)
		}
		return c.JSON(http.StatusOK, files)
	}

	reader, err := a.Source.Open(c.Request().Context(), locationName, filePath)
	if err != nil {
		return a.fail(c, err)
	}
	defer reader.Close()
	return c.Stream(http.StatusOK, "application/octet-stream", reader)
}
