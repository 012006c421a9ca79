package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roadside-assist-service/internal/cache"
	"roadside-assist-service/internal/config"
	"roadside-assist-service/internal/controller"
	"roadside-assist-service/internal/logger"
	"roadside-assist-service/internal/rabbit"
	"roadside-assist-service/internal/repository"
	"roadside-assist-service/internal/service"
	"roadside-assist-service/internal/simulator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim, err := simulator.New(cfg.Simulator)
	if err != nil {
		log.Fatal(err)
	}

	// Repositorios: memoria siempre disponible como respaldo
	memOrders := repository.NewMemoryOrderRepository()
	var (
		orders   service.OrderRepository  = memOrders
		garages  service.GarageRepository = repository.NewMemoryGarageRepository(service.SeedGarages()...)
		fallback service.OrderRepository
	)

	if cfg.StoreBackend == config.BackendMongo {
		client, err := connectMongo(ctx, cfg.MongoURI)
		switch {
		case err != nil && cfg.StrictMode:
			log.WithError(err).Fatal("MongoDB connection failed")
		case err != nil:
			log.WithError(err).Warn("MongoDB connection failed, running in mock mode (no database)")
		default:
			defer client.Disconnect(context.Background())
			db := client.Database(cfg.MongoDBName)

			mo := repository.NewMongoOrderRepository(db)
			mg := repository.NewMongoGarageRepository(db)
			if err := mo.EnsureIndexes(ctx); err != nil {
				log.WithError(err).Warn("could not create order indexes")
			}
			if err := mg.EnsureIndexes(ctx); err != nil {
				log.WithError(err).Warn("could not create garage 2dsphere index")
			}
			orders, garages, fallback = mo, mg, memOrders
			log.WithField("db", cfg.MongoDBName).Info("MongoDB connected")
		}
	}

	nearbyCache := newNearbyCache(ctx, cfg, log)
	events := newPublisher(ctx, cfg, log)

	opts := service.Options{
		StrictMode: cfg.StrictMode,
		Logger:     log,
		Events:     events.publisher,
		Locks:      service.NewKeyedLocker(),
	}
	orderService := service.NewOrderService(orders, garages, opts)
	trackingService := service.NewTrackingService(orders, fallback, sim, opts)
	garageService := service.NewGarageService(garages, nearbyCache, cfg.NearbyRadiusKm, opts)

	if events.conn != nil {
		defer events.conn.Close()
		ch, err := events.conn.Channel()
		if err == nil {
			err = rabbit.SetupConsumers(ctx, ch, orderService, log)
		}
		if err != nil {
			log.WithError(err).Warn("could not start RabbitMQ consumers")
		}
	}

	router := controller.NewRouter(controller.RouterConfig{
		Orders:      controller.NewOrderController(orderService, trackingService),
		Garages:     controller.NewGarageController(garageService, service.NewEstimator()),
		AdminAPIKey: cfg.AdminAPIKey,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":          cfg.Port,
			"store":         orders.Persistent(),
			"strict":        cfg.StrictMode,
			"step_fraction": cfg.Simulator.StepFraction,
			"threshold":     cfg.Simulator.ArrivalThreshold,
		}).Info("roadside assist service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func newNearbyCache(ctx context.Context, cfg *config.Config, log *logrus.Logger) service.NearbyCache {
	if cfg.RedisAddr == "" {
		return service.NopCache{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unavailable, nearby cache disabled")
		_ = client.Close()
		return service.NopCache{}
	}
	return cache.NewRedisNearbyCache(client, cfg.NearbyCacheTTL)
}

type eventsSetup struct {
	conn      *amqp091.Connection
	publisher service.EventPublisher
}

func newPublisher(ctx context.Context, cfg *config.Config, log *logrus.Logger) eventsSetup {
	if cfg.RabbitURL == "" {
		return eventsSetup{publisher: service.NopPublisher{}}
	}

	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		if cfg.StrictMode {
			log.WithError(err).Fatal("RabbitMQ connection failed")
		}
		log.WithError(err).Warn("RabbitMQ unavailable, status events disabled")
		return eventsSetup{publisher: service.NopPublisher{}}
	}

	ch, err := conn.Channel()
	if err == nil {
		var pub *rabbit.StatusPublisher
		pub, err = rabbit.NewStatusPublisher(ch)
		if err == nil {
			return eventsSetup{conn: conn, publisher: pub}
		}
	}
	log.WithError(err).Warn("could not set up status publisher")
	return eventsSetup{conn: conn, publisher: service.NopPublisher{}}
}
