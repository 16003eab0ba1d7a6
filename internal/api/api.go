package api

import (
	"go.uber.org/zap"

	"github.com/spectriclabs/ndt-readers/internal/cache"
	"github.com/spectriclabs/ndt-readers/internal/config"
	"github.com/spectriclabs/ndt-readers/internal/datasource"
)

type API struct {
	Cfg    *config.Configuration
	Cache  *cache.Cache
	Source *datasource.DataSource
	Logger *zap.Logger
}

func NewSDSAPI(cfg *config.Configuration, logger *zap.Logger) *API {
	c := &cache.Cache{Location: cfg.CacheLocation}
	return &API{
		Cfg:    cfg,
		Cache:  c,
		Source: datasource.New(cfg, c, logger),
		Logger: logger,
	}
}
