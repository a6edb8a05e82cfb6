package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/geocode-service/app/config"
	"github.com/geocode-service/app/controllers"
	"github.com/geocode-service/app/services"
	"github.com/geocode-service/internal/corrector"
	"github.com/geocode-service/internal/dataset"
	"github.com/geocode-service/internal/engine"
	"github.com/geocode-service/internal/normalizer"
	"github.com/geocode-service/routes"
)

func main() {
	// 1. Load configuration
	loadConfig()
	if err := config.Load(viper.GetString("engine.tuning_file")); err != nil {
		log.Fatalf("cannot load engine tuning: %v", err)
	}

	// 2. Logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting geocode service")

	// 3. Dataset
	store := initStore(logger)

	// 4. Engine components
	searchEngine := engine.NewEngine(store, config.C.Scoring, logger)
	addressCorrector := corrector.NewCorrector(store, logger)
	addressNormalizer := initNormalizer(logger)

	// 5. Cache (L1 LRU, optional Redis L2)
	cacheService := initCache(logger)

	// 6. Services and controllers
	geocodeService := services.NewGeocodeService(store, searchEngine, addressCorrector, addressNormalizer, cacheService, logger)
	geocodeController := controllers.NewGeocodeController(geocodeService, logger)
	adminController := controllers.NewAdminController(geocodeService, cacheService, logger)

	// 7. Router
	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, geocodeController, adminController)

	// 8. Serve with graceful shutdown
	port := viper.GetString("app.port")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Info("geocode service listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

// loadConfig file plus env vars, env wins.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("dataset.source", "ndjson")
	viper.SetDefault("dataset.path", "./data/addresses.ndjson")
	viper.SetDefault("dataset.mongo_url", "mongodb://localhost:27017/geocode")
	viper.SetDefault("dataset.mongo_collection", "addresses")
	viper.SetDefault("normalizer.mode", "http")
	viper.SetDefault("normalizer.url", "http://localhost:8081")
	viper.SetDefault("cache.l1_size", 4096)
	viper.SetDefault("cache.redis_addr", "")
	viper.SetDefault("cache.redis_ttl_minutes", 60)
	viper.SetDefault("engine.tuning_file", "./config/engine.yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: cannot read config file: %v", err)
	}
}

func initLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("cannot initialize logger:", err)
	}
	return logger
}

// initStore loads the extract from the configured source and builds every
// lookup structure. Startup fails hard on an empty dataset; serving without
// one is worse than not serving.
func initStore(logger *zap.Logger) *dataset.Store {
	source := viper.GetString("dataset.source")
	switch source {
	case "mongo":
		db := initMongoDB(logger)
		recs, err := dataset.LoadMongo(context.Background(), db, viper.GetString("dataset.mongo_collection"), logger)
		if err != nil {
			logger.Fatal("cannot load dataset from mongo", zap.Error(err))
		}
		return dataset.NewStore(recs, logger)
	default:
		recs, err := dataset.LoadNDJSON(viper.GetString("dataset.path"), logger)
		if err != nil {
			logger.Fatal("cannot load dataset extract", zap.Error(err))
		}
		return dataset.NewStore(recs, logger)
	}
}

func initMongoDB(logger *zap.Logger) *mongo.Database {
	mongoURL := viper.GetString("dataset.mongo_url")
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		logger.Fatal("cannot connect to mongo", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("cannot ping mongo", zap.Error(err))
	}

	logger.Info("connected to mongo", zap.String("url", mongoURL))
	return client.Database("geocode")
}

// initNormalizer picks the collaborator flavor: the remote normalization
// service, or the in-process libpostal binding on cgo builds.
func initNormalizer(logger *zap.Logger) normalizer.Normalizer {
	if viper.GetString("normalizer.mode") == "libpostal" {
		logger.Info("using in-process libpostal normalizer")
		return normalizer.NewLibpostal()
	}
	url := viper.GetString("normalizer.url")
	logger.Info("using remote normalizer", zap.String("url", url))
	return normalizer.NewHTTPClient(url, logger)
}

// initCache always gives the in-process LRU; Redis joins as L2 when an
// address is configured and reachable.
func initCache(logger *zap.Logger) services.ICacheService {
	l1, err := services.NewLRUCacheService(viper.GetInt("cache.l1_size"), logger)
	if err != nil {
		logger.Fatal("cannot initialize lru cache", zap.Error(err))
	}

	redisAddr := viper.GetString("cache.redis_addr")
	if redisAddr == "" {
		return l1
	}
	ttl := time.Duration(viper.GetInt("cache.redis_ttl_minutes")) * time.Minute
	l2, err := services.NewRedisCacheService(redisAddr, viper.GetString("cache.redis_password"), viper.GetInt("cache.redis_db"), ttl, logger)
	if err != nil {
		logger.Warn("redis unavailable, running on lru only", zap.Error(err))
		return l1
	}
	return services.NewHybridCacheService(l1, l2, logger)
}
