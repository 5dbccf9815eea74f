package main

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/smartcare/smartcare-api/internal/core/service"
	"github.com/smartcare/smartcare-api/internal/infrastructure/config"
	"github.com/smartcare/smartcare-api/internal/infrastructure/db/mongo"
	"github.com/smartcare/smartcare-api/internal/infrastructure/db/redis"
	"github.com/smartcare/smartcare-api/internal/infrastructure/mqtt"
	"github.com/smartcare/smartcare-api/pkg/logger"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	mongo     *mongodriver.Client
	db        *mongodriver.Database
	redis     *goredis.Client
	publisher *mqtt.Publisher

	users  *mongo.UserRepository
	vitals *mongo.VitalsRepository
	bmis   *mongo.BmiRepository

	simulation *service.SimulationService
	vitalsSvc  *service.VitalsService
	linkSvc    *service.LinkService
	bmiSvc     *service.BmiService
	authSvc    *service.AuthService
}

// bootstrap loads configuration and connects to every backing service.
// MongoDB is required; Redis and MQTT are skipped with a warning when
// unreachable.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "smartcare-api",
	})

	a := &app{cfg: cfg, log: log}

	a.mongo, a.db, err = mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Bool("transactions", cfg.Mongo.Transactions).Msg("connected to mongodb")

	a.users = mongo.NewUserRepository(a.db, cfg.Mongo.Transactions)
	a.vitals = mongo.NewVitalsRepository(a.db)
	a.bmis = mongo.NewBmiRepository(a.db)
	if err := mongo.EnsureIndexes(ctx, a.users, a.vitals, a.bmis); err != nil {
		a.close(ctx)
		return nil, err
	}

	var cache service.VitalsCache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, vitals cache disabled")
		} else {
			a.redis = rdb
			cache = redis.NewVitalsCache(rdb, cfg.Redis.CacheTTL)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("vitals cache enabled")
		}
	}

	simOpts := []service.SimulationOption{}
	if cache != nil {
		simOpts = append(simOpts, service.WithVitalsCache(cache))
	}
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.Connect(mqtt.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		}, logger.Component("mqtt"))
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("mqtt unavailable, sample publishing disabled")
		} else {
			a.publisher = pub
			simOpts = append(simOpts, service.WithSamplePublisher(pub))
			log.Info().Str("broker", cfg.MQTT.Broker).Msg("sample publishing enabled")
		}
	}

	gen := service.NewSampleGenerator(service.DefaultGeneratorConfig())
	a.simulation = service.NewSimulationService(a.vitals, gen, service.SimulationConfig{
		Samples:        cfg.Simulation.Samples,
		SampleInterval: cfg.Simulation.SampleInterval,
	}, logger.Component("simulation"), simOpts...)
	a.vitalsSvc = service.NewVitalsService(a.vitals, cache, logger.Component("vitals"))
	a.linkSvc = service.NewLinkService(a.users, a.vitalsSvc, logger.Component("link"))
	a.bmiSvc = service.NewBmiService(a.bmis, logger.Component("bmi"))
	a.authSvc = service.NewAuthService(a.users, cfg.JWTSecret, cfg.TokenTTL)

	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("redis close")
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			a.log.Warn().Err(err).Msg("mongo disconnect")
		}
	}
}
