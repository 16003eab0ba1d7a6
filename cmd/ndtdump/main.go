// Command ndtdump decodes one instrument file and prints a JSON summary
// of its grids, or its headers with --headers.
package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spectriclabs/ndt-readers/internal/app"
	"github.com/spectriclabs/ndt-readers/internal/readers"
	"github.com/spectriclabs/ndt-readers/internal/ultravision"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	var params ultravision.Params
	flag.Float64SliceVar(&params.Angles, "angles", nil, "Refraction angles in degrees, one per UltraVision block")
	flag.Float64Var(&params.SamplingFrequency, "fs", 0, "UltraVision sampling frequency (Hz)")
	flag.Float64Var(&params.WaveSpeed, "speed", 0, "UltraVision wave speed in the specimen")
	formatName := flag.String("format", "", "Force a format: lecroy, saft or ultravision")
	headers := flag.Bool("headers", false, "Print decoded headers instead of the grid summary")
	debug := flag.Bool("debug", false, "Whether or not to enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] FILE\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := app.SetupLogger(*debug)
	defer logger.Sync()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	format, err := readers.FormatFromPath(path)
	if *formatName != "" {
		format, err = readers.ParseFormat(*formatName)
	}
	if err != nil {
		logger.Fatal("Cannot pick a decoder", zap.String("filename", path), zap.Error(err))
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("Cannot open file", zap.String("filename", path), zap.Error(err))
	}
	defer f.Close()

	res, err := readers.Decode(f, format, params)
	if err != nil {
		logger.Fatal("Decode failed", zap.String("filename", path), zap.String("format", string(format)), zap.Error(err))
	}
	for _, w := range res.Warnings {
		logger.Warn("Decode warning",
			zap.String("filename", path),
			zap.String("kind", string(w.Kind)),
			zap.String("warning", w.String()),
		)
	}

	summary := readers.Summarize(res)
	logger.Debug(summary.Describe(), zap.String("filename", path))

	var out interface{} = summary
	if *headers {
		out = res.Headers
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("Cannot write output", zap.Error(err))
	}
}
