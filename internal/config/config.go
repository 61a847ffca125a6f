package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reroute-bcn/streetscore/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Serve    ServeConfig    `yaml:"serve" mapstructure:"serve"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the five source files.
type DataConfig struct {
	Dir            string `yaml:"dir" mapstructure:"dir"`
	NoiseCSV       string `yaml:"noise_csv" mapstructure:"noise_csv"`
	StreetTreesCSV string `yaml:"street_trees_csv" mapstructure:"street_trees_csv"`
	ParkTreesCSV   string `yaml:"park_trees_csv" mapstructure:"park_trees_csv"`
	CleaningCSV    string `yaml:"cleaning_csv" mapstructure:"cleaning_csv"`
	POIGeoJSON     string `yaml:"poi_geojson" mapstructure:"poi_geojson"`

	// Bounds is the plausibility box; source rows outside it are skipped.
	Bounds model.BBox `yaml:"bounds" mapstructure:"bounds"`
}

// OverpassConfig configures street-network acquisition.
type OverpassConfig struct {
	Endpoint      string     `yaml:"endpoint" mapstructure:"endpoint"`
	TimeoutSecs   int        `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	QueriesPerSec float64    `yaml:"queries_per_sec" mapstructure:"queries_per_sec"`
	BBox          model.BBox `yaml:"bbox" mapstructure:"bbox"`
}

// StoreConfig configures the local network cache.
type StoreConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ScoringConfig holds the tunables consumed by the scoring core.
type ScoringConfig struct {
	BufferMeters      float64 `yaml:"buffer_meters" mapstructure:"buffer_meters"`
	NoiseThresholdDeg float64 `yaml:"noise_threshold_deg" mapstructure:"noise_threshold_deg"`
	NoiseDBMin        float64 `yaml:"noise_db_min" mapstructure:"noise_db_min"`
	NoiseDBMax        float64 `yaml:"noise_db_max" mapstructure:"noise_db_max"`
	CountPercentile   float64 `yaml:"count_percentile" mapstructure:"count_percentile"`
	CleaningPenalty   float64 `yaml:"cleaning_penalty" mapstructure:"cleaning_penalty"`
	Concurrency       int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// ExportConfig configures the output files.
type ExportConfig struct {
	GeoJSONPath   string     `yaml:"geojson_path" mapstructure:"geojson_path"`
	ShapefilePath string     `yaml:"shapefile_path" mapstructure:"shapefile_path"`
	Precision     int        `yaml:"precision" mapstructure:"precision"`
	BBox          model.BBox `yaml:"bbox" mapstructure:"bbox"`
}

// ServeConfig configures the frontend file server.
type ServeConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STREETSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.noise_csv", "2017_tramer_mapa_estrategic_soroll_bcn.csv")
	v.SetDefault("data.street_trees_csv", "OD_Arbrat_Viari_BCN.csv")
	v.SetDefault("data.park_trees_csv", "OD_Arbrat_Parcs_BCN.csv")
	v.SetDefault("data.cleaning_csv", "5.-dadesoddesembre.csv")
	v.SetDefault("data.poi_geojson", "POI.geojson")
	v.SetDefault("data.bounds.min_lng", 1.5)
	v.SetDefault("data.bounds.max_lng", 2.5)
	v.SetDefault("data.bounds.min_lat", 41.0)
	v.SetDefault("data.bounds.max_lat", 42.0)
	v.SetDefault("overpass.endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 180)
	v.SetDefault("overpass.queries_per_sec", 0.5)
	v.SetDefault("overpass.bbox.min_lng", 2.05)
	v.SetDefault("overpass.bbox.max_lng", 2.28)
	v.SetDefault("overpass.bbox.min_lat", 41.31)
	v.SetDefault("overpass.bbox.max_lat", 41.47)
	v.SetDefault("store.path", "streetscore.db")
	v.SetDefault("store.cache_ttl_hours", 24*7)
	v.SetDefault("scoring.buffer_meters", 25)
	v.SetDefault("scoring.noise_threshold_deg", 0.001)
	v.SetDefault("scoring.noise_db_min", 37.5)
	v.SetDefault("scoring.noise_db_max", 77.5)
	v.SetDefault("scoring.count_percentile", 90)
	v.SetDefault("scoring.cleaning_penalty", 0.3)
	v.SetDefault("scoring.concurrency", 8)
	v.SetDefault("export.geojson_path", "barcelona_street_scores.geojson")
	v.SetDefault("export.shapefile_path", "")
	v.SetDefault("export.precision", 6)
	v.SetDefault("export.bbox.min_lng", 2.13)
	v.SetDefault("export.bbox.max_lng", 2.21)
	v.SetDefault("export.bbox.min_lat", 41.37)
	v.SetDefault("export.bbox.max_lat", 41.42)
	v.SetDefault("serve.port", 8080)
	v.SetDefault("serve.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
