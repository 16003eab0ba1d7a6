package api

import (
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spectriclabs/ndt-readers/internal/datasource"
	"github.com/spectriclabs/ndt-readers/internal/field"
	"github.com/spectriclabs/ndt-readers/internal/grid"
	"github.com/spectriclabs/ndt-readers/internal/lecroy"
	"github.com/spectriclabs/ndt-readers/internal/readers"
	"github.com/spectriclabs/ndt-readers/internal/ultravision"
)

var errBadParam = errors.New("bad query parameter")

// HeaderResponse is the body of /sds/hdr.
type HeaderResponse struct {
	Format   readers.Format  `json:"format"`
	Headers  []*field.Header `json:"headers"`
	Warnings []grid.Warning  `json:"warnings"`
}

// GetHeader decodes a file and returns its headers.
func (a *API) GetHeader(c echo.Context) error {
	res, err := a.decode(c)
	if err != nil {
		return a.fail(c, err)
	}
	warnings := res.Warnings
	if warnings == nil {
		warnings = []grid.Warning{}
	}
	return c.JSON(http.StatusOK, HeaderResponse{Format: res.Format, Headers: res.Headers, Warnings: warnings})
}

// GetGrid decodes a file and returns a summary of every grid.
func (a *API) GetGrid(c echo.Context) error {
	res, err := a.decode(c)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(http.StatusOK, readers.Summarize(res))
}

func (a *API) decode(c echo.Context) (*readers.Result, error) {
	filePath := c.Param("*")
	locationName := c.Param("location")

	format, err := requestFormat(c, filePath)
	if err != nil {
		return nil, err
	}
	params, err := ultravisionParams(c)
	if err != nil {
		return nil, err
	}

	reader, err := a.Source.Open(c.Request().Context(), locationName, filePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	res, err := readers.Decode(reader, format, params)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		a.Logger.Warn("Decode warning",
			zap.String("location_name", locationName),
			zap.String("filename", filePath),
			zap.String("kind", string(w.Kind)),
			zap.String("warning", w.String()),
		)
	}
	return res, nil
}

func requestFormat(c echo.Context, filePath string) (readers.Format, error) {
	if name := c.QueryParam("format"); name != "" {
		return readers.ParseFormat(name)
	}
	return readers.FormatFromPath(filePath)
}

func floatParam(c echo.Context, name string) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Wrapf(errBadParam, "%s=%q", name, raw)
	}
	return v, nil
}

// ultravisionParams reads angles (comma separated degrees), fs and speed.
// Every value must be a finite number.
func ultravisionParams(c echo.Context) (ultravision.Params, error) {
	var p ultravision.Params
	var err error
	if p.SamplingFrequency, err = floatParam(c, "fs"); err != nil {
		return p, err
	}
	if p.WaveSpeed, err = floatParam(c, "speed"); err != nil {
		return p, err
	}
	if raw := c.QueryParam("angles"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return p, errors.Wrapf(errBadParam, "angles=%q", raw)
			}
			p.Angles = append(p.Angles, v)
		}
	}
	return p, nil
}

// status maps an error onto the HTTP status reported for it.
func status(err error) int {
	switch {
	case errors.Is(err, errBadParam),
		errors.Is(err, readers.ErrUnknownFormat),
		errors.Is(err, ultravision.ErrInvalidParams),
		errors.Is(err, datasource.ErrUnknownLocation),
		errors.Is(err, datasource.ErrUnsupportedLocation):
		return http.StatusBadRequest
	case errors.Is(err, field.ErrFieldDecode),
		errors.Is(err, field.ErrInvalidEnumIndex),
		errors.Is(err, grid.ErrIntegrity),
		errors.Is(err, lecroy.ErrTemplateMarkerNotFound),
		errors.Is(err, ultravision.ErrAngleCountMismatch),
		errors.Is(err, ultravision.ErrMissingAngle):
		return http.StatusUnprocessableEntity
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (a *API) fail(c echo.Context, err error) error {
	code := status(err)
	if code >= http.StatusInternalServerError {
		a.Logger.Error("Request failed", zap.String("path", c.Request().URL.Path), zap.Error(err))
	} else {
		a.Logger.Info("Request rejected", zap.String("path", c.Request().URL.Path), zap.Int("status", code), zap.Error(err))
	}
	return c.String(code, err.Error())
}
