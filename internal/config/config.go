package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFile is the configuration file name searched for in the working
// directory, without its extension.
const DefaultFile = "sds_config"

type Location struct {
	LocationName   string `mapstructure:"location_name" json:"location_name"`
	LocationType   string `mapstructure:"location_type" json:"location_type"`
	Path           string `mapstructure:"path" json:"path,omitempty"`
	MinioBucket    string `mapstructure:"minio_bucket" json:"minio_bucket,omitempty"`
	Location       string `mapstructure:"location" json:"location,omitempty"`
	MinioAccessKey string `mapstructure:"minio_access_key" json:"-"`
	MinioSecretKey string `mapstructure:"minio_secret_key" json:"-"`
	MinioSecure    bool   `mapstructure:"minio_secure" json:"-"`
}

// Configuration Struct for Configuraion File
type Configuration struct {
	Host            string     `mapstructure:"host"`
	Port            int        `mapstructure:"port"`
	Debug           bool       `mapstructure:"debug"`
	UseCache        bool       `mapstructure:"use_cache"`
	CacheLocation   string     `mapstructure:"cache_location"`
	CacheMaxBytes   int64      `mapstructure:"cache_max_bytes"`
	CheckCacheEvery int        `mapstructure:"check_cache_every"`
	LocationDetails []Location `mapstructure:"location_details"`
}

// Location returns the configured location called name.
func (c *Configuration) Location(name string) (Location, bool) {
	for _, l := range c.LocationDetails {
		if l.LocationName == name {
			return l, true
		}
	}
	return Location{}, false
}

// SetDefaults registers the values used when neither the file nor a flag
// sets a key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 5055)
	v.SetDefault("debug", false)
	v.SetDefault("use_cache", true)
	v.SetDefault("cache_location", "./sdscache/")
	v.SetDefault("cache_max_bytes", int64(100000000))
	v.SetDefault("check_cache_every", 60)
}

// Load reads configFile (a path, or a bare name looked up in the working
// directory) into a Configuration. Flags in fs, if any, override the file.
func Load(v *viper.Viper, configFile string, fs *pflag.FlagSet) (*Configuration, error) {
	SetDefaults(v)
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, errors.Wrap(err, "config: bind flags")
		}
	}

	v.SetConfigType("yaml")
	if configFile == "" || configFile == DefaultFile {
		v.SetConfigName(DefaultFile)
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(configFile)
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "config: read %s", configFile)
	}

	configuration := &Configuration{}
	if err := v.Unmarshal(configuration); err != nil {
		return nil, errors.Wrapf(err, "config: decode %s", configFile)
	}
	return configuration, nil
}
