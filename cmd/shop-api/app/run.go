package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ecomkit/shop-api/configs"
	"github.com/ecomkit/shop-api/internal/adapter/cache"
	httpapi "github.com/ecomkit/shop-api/internal/adapter/http"
	"github.com/ecomkit/shop-api/internal/adapter/queue"
	"github.com/ecomkit/shop-api/internal/adapter/repo"
	"github.com/ecomkit/shop-api/internal/logging"
	"github.com/ecomkit/shop-api/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

// mongoPinger adapts the client to the health handler's probe.
type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	l := logging.New("bootstrap")

	connectTimeout := cfg.Mongo.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = 10 * time.Second
	}

	// init mongo
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.Mongo.Database)

	productRepo := repo.NewMongoProductRepo(db)
	orderRepo := repo.NewMongoOrderRepo(db)

	// init redis (optional: idempotent order placement)
	var (
		idem usecase.IdempotencyStore
		rdb  *redis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, nil, err
		}
		idem = cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	} else {
		l.Info("redis disabled, order placement is not idempotent")
	}

	// init rabbitmq (optional: order.created events)
	var (
		events     usecase.OrderEvents
		rabbitConn *amqp.Connection
	)
	if cfg.Rabbit.URL != "" {
		conn, err := amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return nil, nil, err
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		producer, err := queue.NewRabbitProducer(ch)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		events = producer
		rabbitConn = conn
	} else {
		l.Info("rabbitmq disabled, order.created events are not published")
	}

	catalog := usecase.NewCatalog(productRepo)
	place := usecase.NewPlaceOrder(productRepo, orderRepo, idem, events)
	orderQuery := usecase.NewOrderQuery(orderRepo)

	router := httpapi.NewRouter(
		httpapi.NewProductHandler(catalog),
		httpapi.NewOrderHandler(place, orderQuery),
		httpapi.NewHealthHandler(mongoPinger{client: client}),
	)

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
		if rdb != nil {
			_ = rdb.Close()
		}
		if rabbitConn != nil {
			_ = rabbitConn.Close()
		}
	}

	return &App{Router: router}, cleanup, nil
}
