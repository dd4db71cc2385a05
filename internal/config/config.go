package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CarPark  CarParkConfig
	Geo      GeoConfig
	Log      LogConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CarParkConfig holds the ingestion and lookup tunables.
type CarParkConfig struct {
	CSVPath           string
	ImportBatchSize   int
	FeedURL           string
	FeedAPIKey        string
	FeedTimeout       time.Duration
	GeoCacheTTL       time.Duration
	SearchRadiusKm    float64
	MaxSearchRadiusKm float64
}

// GeoConfig bounds the output of the planar coordinate conversion.
type GeoConfig struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled      bool
	SyncInterval time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		CarPark: CarParkConfig{
			CSVPath:           viper.GetString("CARPARK_CSV_PATH"),
			ImportBatchSize:   viper.GetInt("CARPARK_IMPORT_BATCH_SIZE"),
			FeedURL:           viper.GetString("CARPARK_API_URL"),
			FeedAPIKey:        viper.GetString("CARPARK_API_KEY"),
			FeedTimeout:       time.Duration(viper.GetInt("CARPARK_API_TIMEOUT")) * time.Second,
			GeoCacheTTL:       time.Duration(viper.GetInt("CARPARK_GEO_CACHE_TTL")) * time.Second,
			SearchRadiusKm:    viper.GetFloat64("CARPARK_SEARCH_RADIUS_KM"),
			MaxSearchRadiusKm: viper.GetFloat64("CARPARK_MAX_SEARCH_RADIUS_KM"),
		},
		Geo: GeoConfig{
			MinLat: viper.GetFloat64("GEO_MIN_LAT"),
			MaxLat: viper.GetFloat64("GEO_MAX_LAT"),
			MinLon: viper.GetFloat64("GEO_MIN_LON"),
			MaxLon: viper.GetFloat64("GEO_MAX_LON"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:      viper.GetBool("WORKER_ENABLED"),
			SyncInterval: time.Duration(viper.GetInt("WORKER_SYNC_INTERVAL")) * time.Second,
		},
	}

	// Set default values if not provided
	if cfg.CarPark.ImportBatchSize == 0 {
		cfg.CarPark.ImportBatchSize = 100
	}
	if cfg.CarPark.FeedTimeout == 0 {
		cfg.CarPark.FeedTimeout = 120 * time.Second
	}
	if cfg.CarPark.GeoCacheTTL == 0 {
		cfg.CarPark.GeoCacheTTL = 15 * time.Minute
	}
	if cfg.CarPark.SearchRadiusKm == 0 {
		cfg.CarPark.SearchRadiusKm = 10
	}
	if cfg.CarPark.MaxSearchRadiusKm == 0 {
		cfg.CarPark.MaxSearchRadiusKm = 50
	}
	if cfg.Geo.MinLat == 0 && cfg.Geo.MaxLat == 0 {
		cfg.Geo.MinLat = 1.13
		cfg.Geo.MaxLat = 1.47
		cfg.Geo.MinLon = 103.59
		cfg.Geo.MaxLon = 104.07
	}
	if cfg.Worker.SyncInterval == 0 {
		cfg.Worker.SyncInterval = 15 * time.Minute
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
