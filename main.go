package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/joho/godotenv"
	"github.com/kardianos/osext"
	"github.com/sirupsen/logrus"

	fyyur "github.com/derWhity/fyyur/internal"
	"github.com/derWhity/fyyur/internal/cache"
	"github.com/derWhity/fyyur/internal/cache/inmem"
	rediscache "github.com/derWhity/fyyur/internal/cache/redis"
	"github.com/derWhity/fyyur/internal/ctxhelper"
	"github.com/derWhity/fyyur/internal/log"
	"github.com/derWhity/fyyur/internal/migrate"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/render"
	"github.com/derWhity/fyyur/internal/repos/store"
)

const (
	appName    = "Fyyur"
	appVersion = "1.0.0"
	// Prefix of all keys the response cache stores in Redis
	redisPrefix = "fyyur:page:"
)

// Checks and tries to create the given directory recursively (or exits if this fails)
func checkAndCreateDir(path string, logger *logrus.Entry) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.WithField(log.FldPath, path).Info("Directory does not exist - trying to create...")
			if err = os.MkdirAll(path, os.ModePerm); err != nil {
				logger.WithError(err).Fatal("Failed to create directory")
			}
			logger.Info("Directory created successfully")
		} else {
			logger.WithError(err).Fatal("Stat has failed")
		}
	} else {
		if !fileInfo.IsDir() {
			logger.Fatalf("'%s' is not a directory. Remove the plain file if you want to continue", path)
		}
	}
}

// newCache creates the response cache selected in the configuration
func newCache(ctx context.Context, conf models.CacheConfig, logger *logrus.Entry) (cache.Cache, error) {
	ttl := conf.TTL()
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	if conf.Backend == models.CacheRedis {
		client := rediscache.NewClient(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
		c, err := rediscache.New(ctx, client, redisPrefix, ttl, logger)
		if err != nil {
			client.Close()
			return nil, err
		}
		return c, nil
	}
	return inmem.New(ttl), nil
}

func main() {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		panic(err)
	}

	configFile := flag.String(
		"config",
		filepath.Join(execDir, "config.json"),
		"The configuration file to load the application's configuration from",
	)
	writeConfig := flag.Bool(
		"write-config",
		false,
		"Write the configuration file filled up with the default values and exit",
	)
	flag.Parse()

	ctx := context.Background()

	// Initialize the logger
	logger := logrus.WithField(log.FldVersion, appVersion)
	logger.Infof("%s version %s is starting up...", appName, appVersion)
	ctx = context.WithValue(ctx, ctxhelper.KeyLogger, logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("Failed to read .env file")
	}

	// Load the main configuration file
	cs := fyyur.NewConfigService(*configFile)
	if err := cs.Load(ctx); err != nil {
		logger.WithError(err).Error("Cannot load config. Using defaults")
	}
	if *writeConfig {
		// Environment overrides are left out - they may carry credentials
		if err := cs.Write(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to write the configuration file")
		}
		return
	}
	if err := cs.ApplyEnvironment(ctx, os.LookupEnv); err != nil {
		logger.WithError(err).Fatal("Invalid configuration in environment")
	}
	conf := cs.GetConfig(ctx)
	if err := conf.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	if level, err := logrus.ParseLevel(conf.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logger.WithError(err).Warn("Unknown log level - keeping the default")
	}

	logger.Infof("Using '%s' as data directory", conf.DataDir)
	checkAndCreateDir(conf.DataDir, logger)

	// Set up the database connection and perform pending migrations
	db, err := openDatabase(ctx, conf, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database connection")
	}
	defer db.Close()
	logger.Info("Performing database migrations...")
	if err = migrate.ExecuteMigrationsOnDb(ctx, db, logger); err != nil {
		logger.WithError(err).Fatal("Database migration has failed. Please check database for consistency and try again.")
	}

	st := store.New(db, logger.WithField("component", "store"))
	venueSrv := fyyur.NewVenueService(st, logger)
	artistSrv := fyyur.NewArtistService(st, logger)
	showSrv := fyyur.NewShowService(st, logger)
	listingSrv := fyyur.NewListingService(st, time.Now, logger)

	responseCache, err := newCache(ctx, conf.Cache, logger.WithField("component", "cache"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up the response cache")
	}
	defer responseCache.Close()

	renderer, err := render.New()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load the page templates")
	}

	httpLogger := logger.WithField(log.FldTransport, "HTTP")

	h := fyyur.MakeHTTPHandler(
		venueSrv,
		artistSrv,
		showSrv,
		listingSrv,
		renderer,
		responseCache,
		httpLogger,
	)
	srv := &http.Server{
		Addr:              conf.ListenAddress,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start listening
	errs := make(chan error, 2)

	// Listen for stop signals that will end the service
	go func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		err := fmt.Errorf("%s", <-c)
		logger.Info("Caught signal to stop. Shutting down.")
		daemon.SdNotify(false, daemon.SdNotifyStopping)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Graceful shutdown failed")
		}
		errs <- err
	}()

	go func() {
		httpLogger.WithField("addr", conf.ListenAddress).Info("Starting listening port")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errs <- err
		}
	}()

	// Watchdog for systemd
	go func() {
		interval, err := daemon.SdWatchdogEnabled(false)
		if err != nil || interval == 0 {
			return
		}
		logger.Info("Activating systemd watchdog goroutine")
		port := conf.ListenAddress[strings.LastIndex(conf.ListenAddress, ":")+1:]
		url := fmt.Sprintf("http://127.0.0.1:%s/alive", port)
		client := &http.Client{Timeout: interval / 3}
		for {
			if resp, err := client.Get(url); err == nil {
				resp.Body.Close()
				daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
			time.Sleep(interval / 3)
		}
	}()

	// Notify systemd that we are ready to go (if available)
	daemon.SdNotify(false, daemon.SdNotifyReady)

	logger.WithError(<-errs).Info("Shutdown complete")
}
