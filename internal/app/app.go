package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spectriclabs/ndt-readers/internal/api"
	"github.com/spectriclabs/ndt-readers/internal/cache"
	"github.com/spectriclabs/ndt-readers/internal/config"
)

func Run() {
	flags, configFile := SetupFlags(os.Args[1:])
	debug, _ := flags.GetBool("debug")
	logger := SetupLogger(debug)
	defer logger.Sync()

	cfg := LoadConfig(logger, configFile, flags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.UseCache {
		SetupCache(ctx, *cfg, logger)
	}

	// Setup API
	sdsapi := api.NewSDSAPI(cfg, logger)

	// Setup HTTP server
	e := SetupServer(sdsapi)

	// Run server
	address := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	go func() {
		logger.Info("Starting server", zap.String("address", address))
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			logger.Error("Server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("Shutting down the server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Shutdown failed", zap.Error(err))
	}
}

// SetupFlags sets up the minimal set of CLI flags.
//
// * config - location of SDS config file
//            (default: sds_config, found as ./sds_config.yml)
// * host, port - where the server listens; override the config file
// * debug - whether or not to enable debug logging
//           (default: false)
func SetupFlags(args []string) (*pflag.FlagSet, string) {
	flags := pflag.NewFlagSet("sds", pflag.ExitOnError)
	configFile := flags.StringP("config", "c", config.DefaultFile, "Location of SDS configuration file")
	flags.StringP("host", "i", "0.0.0.0", "Host where the server will run")
	flags.IntP("port", "p", 5055, "Port where the server will run")
	flags.BoolP("debug", "d", false, "Whether or not to enable debug logging")
	flags.Parse(args)
	return flags, *configFile
}

// SetupLogger sets up the zap.Logger structured logger.
func SetupLogger(debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	logger, logErr := zap.Config{
		Encoding:    "json",
		Level:       zap.NewAtomicLevelAt(level),
		OutputPaths: []string{"stdout"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			LevelKey:    "level",
			EncodeLevel: zapcore.CapitalLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.ISO8601TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}.Build()
	if logErr != nil {
		log.Fatalf("Couldn't setup logger: %v", logErr)
	}

	return logger
}

// LoadConfig reads the configuration file and unmarshals
// it into a config.Configuration struct.
func LoadConfig(logger *zap.Logger, configFile string, flags *pflag.FlagSet) *config.Configuration {
	configuration, err := config.Load(viper.New(), configFile, flags)
	if err != nil {
		logger.Fatal(
			"Error loading config file",
			zap.String("config_file", configFile),
			zap.Error(err),
		)
	}
	return configuration
}

func SetupServer(api *api.API) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Debug = api.Cfg.Debug

	// Setup Middleware
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// File-specific routes
	e.GET("/sds/fs", api.GetFileLocations)
	e.GET("/sds/fs/:location/*", api.GetFileOrDirectory)

	// Decoder routes
	e.GET("/sds/hdr/:location/*", api.GetHeader)
	e.GET("/sds/grid/:location/*", api.GetGrid)

	// Add Prometheus as middleware for metrics gathering
	p := prometheus.NewPrometheus("ndt_readers", nil)
	p.Use(e)

	return e
}

// SetupCache creates the cache directory and kicks off the cache monitor,
// which runs on the interval set in the config file until ctx is done.
func SetupCache(ctx context.Context, configuration config.Configuration, logger *zap.Logger) {
	minioPath := filepath.Join(configuration.CacheLocation, cache.MinioDir)
	if err := os.MkdirAll(minioPath, 0755); err != nil {
		logger.Error("Error creating cache directory", zap.String("path", minioPath), zap.Error(err))
		return
	}
	every := time.Duration(configuration.CheckCacheEvery) * time.Second
	if every <= 0 {
		every = time.Minute
	}
	go cache.CheckCache(ctx, logger, minioPath, every, configuration.CacheMaxBytes)
}
