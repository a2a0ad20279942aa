package models

import (
	"path"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kardianos/osext"
)

const (
	// DriverSQLite selects the embedded SQLite database
	DriverSQLite = "sqlite3"
	// DriverPostgres selects a PostgreSQL server accessed through pgx
	DriverPostgres = "postgres"
	// CacheMemory keeps cached pages inside the process
	CacheMemory = "memory"
	// CacheRedis keeps cached pages inside a Redis server
	CacheRedis = "redis"
)

// AppConfig is the application's main configuration structure
type AppConfig struct {
	// The directory where Fyyur stores all of its data - defaults to the /data subdirectory of the folder, the
	// Fyyur executable resides in
	DataDir string `json:"dataDir"`
	// The IP address to listen at - including the port number
	ListenAddress string `json:"listenAddress"`
	// The minimum level of log messages to emit (debug, info, warning, error)
	LogLevel string `json:"logLevel"`
	// Where venues, artists and shows are stored
	Database DatabaseConfig `json:"database"`
	// How rendered pages are cached
	Cache CacheConfig `json:"cache"`
}

// DatabaseConfig selects and configures the relational store
type DatabaseConfig struct {
	// Either "sqlite3" or "postgres"
	Driver string `json:"driver"`
	// Data source name. When empty for SQLite, fyyur.db inside the data directory is used
	DSN string `json:"dsn"`
}

// CacheConfig configures the response cache
type CacheConfig struct {
	// Either "memory" or "redis"
	Backend    string `json:"backend"`
	TTLSeconds uint   `json:"ttlSeconds"`
	// Redis connection settings - only used by the redis backend
	RedisAddr     string `json:"redisAddr"`
	RedisPassword string `json:"redisPassword"`
	RedisDB       int    `json:"redisDb"`
}

// TTL returns the time cached pages stay valid
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Validate checks the configuration for values the application cannot work with
func (c AppConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ListenAddress, validation.Required),
		validation.Field(&c.Database, validation.By(func(value interface{}) error {
			db := value.(DatabaseConfig)
			return validation.ValidateStruct(&db,
				validation.Field(&db.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
				validation.Field(&db.DSN, validation.When(db.Driver == DriverPostgres, validation.Required)),
			)
		})),
		validation.Field(&c.Cache, validation.By(func(value interface{}) error {
			cc := value.(CacheConfig)
			return validation.ValidateStruct(&cc,
				validation.Field(&cc.Backend, validation.Required, validation.In(CacheMemory, CacheRedis)),
				validation.Field(&cc.RedisAddr, validation.When(cc.Backend == CacheRedis, validation.Required)),
			)
		})),
	)
}

// GetDefaultConfig returns the default configuration values for the application
func GetDefaultConfig() (*AppConfig, error) {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		return nil, err
	}
	return &AppConfig{
		DataDir:       path.Join(execDir, "data"),
		ListenAddress: ":5000",
		LogLevel:      "info",
		Database: DatabaseConfig{
			Driver: DriverSQLite,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			TTLSeconds: 50,
		},
	}, nil
}
