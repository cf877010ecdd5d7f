package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix   = "TRIPS"
	cityToken   = "{city}"
	defaultPath = "./data/"
)

type Config struct {
	LogLevel      string              `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Workers       int                 `mapstructure:"workers" validate:"min=1"`
	Store         StoreConfig         `mapstructure:"store"`
	Graph         GraphConfig         `mapstructure:"graph"`
	Filter        FilterConfig        `mapstructure:"filter"`
	Interpolation InterpolationConfig `mapstructure:"interpolation"`
	Export        ExportConfig        `mapstructure:"export"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	City          CityConfig          `mapstructure:"city"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=postgres file"`
	DSN         string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
	SamplesFile string `mapstructure:"samples_file" validate:"required_if=Driver file"`
}

type GraphConfig struct {
	OsmFile          string  `mapstructure:"osm_file"`
	CacheFile        string  `mapstructure:"cache_file"`
	RadiusMeters     float64 `mapstructure:"radius_meters" validate:"gt=0"`
	SnapRadiusMeters float64 `mapstructure:"snap_radius_meters" validate:"gt=0"`
	SnapCacheSize    int     `mapstructure:"snap_cache_size" validate:"min=1"`
}

type FilterConfig struct {
	MaxJitterDuration     time.Duration `mapstructure:"max_jitter_duration" validate:"gt=0"`
	MinDisplacementMeters float64       `mapstructure:"min_displacement_meters" validate:"gt=0"`
}

type InterpolationConfig struct {
	Mode string `mapstructure:"mode" validate:"oneof=index distance"`
}

type ExportConfig struct {
	Folder  string   `mapstructure:"folder" validate:"required"`
	Formats []string `mapstructure:"formats" validate:"min=1,dive,oneof=csv json"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// CityConfig overrides the city center lookup. Used by the file store, which has no cities table.
type CityConfig struct {
	CenterLat float64 `mapstructure:"center_lat" validate:"min=-90,max=90"`
	CenterLon float64 `mapstructure:"center_lon" validate:"min=-180,max=180"`
	HasCenter bool    `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("workers", 4)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.samples_file", "")
	v.SetDefault("graph.osm_file", "")
	v.SetDefault("graph.cache_file", "./data/graph_"+cityToken+".bz2")
	v.SetDefault("graph.radius_meters", 10000.0)
	v.SetDefault("graph.snap_radius_meters", 1000.0)
	v.SetDefault("graph.snap_cache_size", 1<<16)
	v.SetDefault("filter.max_jitter_duration", "62s")
	v.SetDefault("filter.min_displacement_meters", 60.0)
	v.SetDefault("interpolation.mode", "index")
	v.SetDefault("export.folder", "./export")
	v.SetDefault("export.formats", []string{"csv", "json"})
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("city.center_lat", 0.0)
	v.SetDefault("city.center_lon", 0.0)
}

// Load reads path (or config.yaml under ./data/ when path is empty) with TRIPS_ prefixed
// environment overrides, e.g. TRIPS_STORE_DSN. A .env file is loaded first when present.
// overrides (command line flags) are applied before validation.
func Load(path string, overrides ...func(cfg *Config)) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(defaultPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("fatal error config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.City.HasCenter = isNonZero(v, "city.center_lat") || isNonZero(v, "city.center_lon")
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = os.Getenv("DATABASE_URL")
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isNonZero(v *viper.Viper, key string) bool {
	return v.GetFloat64(key) != 0
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GraphCacheFile expands {city} in graph.cache_file.
func (c *Config) GraphCacheFile(cityID int) string {
	return strings.ReplaceAll(c.Graph.CacheFile, cityToken, strconv.Itoa(cityID))
}
