package main

import (
	"context"
	"log"

	"github.com/Song-beanpp/film-survey-app-final/internal/bootstrap"
	"github.com/Song-beanpp/film-survey-app-final/internal/config"
	"github.com/Song-beanpp/film-survey-app-final/internal/server"
	"github.com/Song-beanpp/film-survey-app-final/pkg/database"
)

func main() {
	cfg := config.Load()

	gateway := database.NewMongoGateway(database.MongoConfig{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		Collection:     cfg.Mongo.Collection,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})

	// Kick off the first connection attempt without blocking startup; the
	// service lazily retries and falls back to the local file until the
	// store comes up.
	go func() {
		if !gateway.Connect(context.Background()) {
			log.Println("initial mongodb connection failed, using fallback until retry")
		}
	}()

	container := bootstrap.NewContainer(gateway, cfg)
	defer func() { _ = container.Logger.Sync() }()

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
