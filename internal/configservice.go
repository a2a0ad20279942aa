package internal

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/derWhity/fyyur/internal/ctxhelper"
	"github.com/derWhity/fyyur/internal/log"
	"github.com/derWhity/fyyur/internal/models"
)

// Environment variables overriding the configuration file
const (
	EnvDataDir       = "FYYUR_DATA_DIR"
	EnvListenAddress = "FYYUR_LISTEN_ADDRESS"
	EnvLogLevel      = "FYYUR_LOG_LEVEL"
	EnvDBDriver      = "FYYUR_DATABASE_DRIVER"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvCacheBackend  = "FYYUR_CACHE_BACKEND"
	EnvCacheTTL      = "FYYUR_CACHE_TTL"
	EnvRedisAddr     = "FYYUR_REDIS_ADDR"
	EnvRedisPassword = "FYYUR_REDIS_PASSWORD"
	EnvRedisDB       = "FYYUR_REDIS_DB"
)

// ConfigService loads and stores the application's configuration
type ConfigService interface {
	// Load loads the application config from its default file location
	Load(ctx context.Context) error
	// LoadFromFile loads the configuration from the given JSON file
	LoadFromFile(ctx context.Context, filename string) error
	// ApplyEnvironment overrides the loaded configuration with the values of the environment variables found by lookup
	ApplyEnvironment(ctx context.Context, lookup func(key string) (string, bool)) error
	// Write writes the current application configuration to the default file name
	Write(ctx context.Context) error
	// WriteToFile writes the current application configuration to a JSON file
	WriteToFile(ctx context.Context, filename string) error
	// GetConfig retuns the current application configuration
	GetConfig(ctx context.Context) models.AppConfig
}

// -- ConfigService implementation -------------------------------------------------------------------------------------

type configService struct {
	configFilename string
	config         *models.AppConfig
}

// NewConfigService creates a new configuration service instance with the given default file name
func NewConfigService(configFilename string) ConfigService {
	return &configService{
		configFilename: configFilename,
	}
}

// Load loads the application config from its default file location
func (s *configService) Load(ctx context.Context) error {
	return s.LoadFromFile(ctx, s.configFilename)
}

// LoadFromFile loads the configuration from the given JSON file. Values missing in the file keep their defaults.
func (s *configService) LoadFromFile(ctx context.Context, filename string) error {
	logger := ctxhelper.Logger(ctx)
	logger.WithField(log.FldFile, filename).Info("Loading configuration file")
	conf, err := models.GetDefaultConfig()
	if err != nil {
		return errors.Wrap(err, "LoadFromFile: Failed to create default config")
	}
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "LoadFromFile: cannot load configuration file")
	}
	defer f.Close()
	if err = json.NewDecoder(f).Decode(&conf); err != nil {
		return errors.Wrap(err, "LoadFromFile: Failed to decode configuration file")
	}
	s.config = conf
	return nil
}

// ApplyEnvironment overrides the loaded configuration with the values of the environment variables found by lookup
func (s *configService) ApplyEnvironment(ctx context.Context, lookup func(key string) (string, bool)) error {
	conf := s.GetConfig(ctx)
	get := func(key string) (string, bool) {
		val, ok := lookup(key)
		val = strings.TrimSpace(val)
		if ok && val != "" {
			ctxhelper.Logger(ctx).WithField("env", key).Debug("Configuration overridden by environment")
			return val, true
		}
		return "", false
	}
	str := func(key string, target *string) {
		if val, ok := get(key); ok {
			*target = val
		}
	}

	str(EnvDataDir, &conf.DataDir)
	str(EnvListenAddress, &conf.ListenAddress)
	str(EnvLogLevel, &conf.LogLevel)
	if val, ok := get(EnvDatabaseURL); ok {
		conf.Database.DSN = val
		if strings.HasPrefix(val, "postgres://") || strings.HasPrefix(val, "postgresql://") {
			conf.Database.Driver = models.DriverPostgres
		}
	}
	str(EnvDBDriver, &conf.Database.Driver)
	str(EnvCacheBackend, &conf.Cache.Backend)
	str(EnvRedisAddr, &conf.Cache.RedisAddr)
	str(EnvRedisPassword, &conf.Cache.RedisPassword)
	if val, ok := get(EnvCacheTTL); ok {
		ttl, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "ApplyEnvironment: %s is no valid number of seconds", EnvCacheTTL)
		}
		conf.Cache.TTLSeconds = uint(ttl)
	}
	if val, ok := get(EnvRedisDB); ok {
		db, err := strconv.Atoi(val)
		if err != nil {
			return errors.Wrapf(err, "ApplyEnvironment: %s is no valid database number", EnvRedisDB)
		}
		conf.Cache.RedisDB = db
	}
	s.config = &conf
	return nil
}

// Write writes the current application configuration to the default file name
func (s *configService) Write(ctx context.Context) error {
	return s.WriteToFile(ctx, s.configFilename)
}

// WriteToFile writes the current application configuration to a JSON file
func (s *configService) WriteToFile(ctx context.Context, filename string) error {
	logger := ctxhelper.Logger(ctx)
	logger.WithField(log.FldFile, filename).Info("Writing configuration file")
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "WriteToFile: Cannot open configuration file '%s' to write to", filename)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	conf := s.GetConfig(ctx)
	if err := enc.Encode(&conf); err != nil {
		return errors.Wrap(err, "WriteToFile: Failed to serialize configuration data")
	}
	return nil
}

// GetConfig retuns the current application configuration
func (s *configService) GetConfig(ctx context.Context) models.AppConfig {
	var ret models.AppConfig
	if s.config != nil {
		ret = *s.config
	} else {
		if tmp, err := models.GetDefaultConfig(); err == nil {
			ret = *tmp
		}
	}
	return ret
}
