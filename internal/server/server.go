// Package server boots every subsystem and serves HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/kalakriti/app/jobs"
	"github.com/shashiranjanraj/kalakriti/app/routes"
	"github.com/shashiranjanraj/kalakriti/config"
	"github.com/shashiranjanraj/kalakriti/pkg/cache"
	"github.com/shashiranjanraj/kalakriti/pkg/database"
	"github.com/shashiranjanraj/kalakriti/pkg/event"
	"github.com/shashiranjanraj/kalakriti/pkg/logger"
	"github.com/shashiranjanraj/kalakriti/pkg/metrics"
	"github.com/shashiranjanraj/kalakriti/pkg/middleware"
	"github.com/shashiranjanraj/kalakriti/pkg/queue"
	"github.com/shashiranjanraj/kalakriti/pkg/reqid"
	"github.com/shashiranjanraj/kalakriti/pkg/router"
	"github.com/shashiranjanraj/kalakriti/pkg/storage"
	"github.com/shashiranjanraj/kalakriti/pkg/ws"
)

// Start boots config, logging, storage, database, cache, queue workers,
// and the event-to-websocket bridge, then serves HTTP until the process
// exits.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	logger.Setup()

	if err := database.Connect(); err != nil {
		return err
	}
	if err := storage.Connect(); err != nil {
		return err
	}

	// Redis is optional: without it the catalog cache is a pass-through
	// and the queue falls back to the in-process driver.
	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, continuing without cache", "error", err)
	}
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	if err := queue.UseDB(database.DB); err != nil {
		return err
	}
	jobs.RegisterAll()
	queue.StartWorkers(context.Background(), 5)

	hub := ws.NewHub()
	go hub.Run()
	bridgeOrderEvents(hub)

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(300, time.Minute))

	routes.RegisterAPI(r, hub)

	addr := ":" + config.AppPort()
	logger.Info("server: listening", "addr", addr, "env", config.AppEnv())
	fmt.Printf("Kalakriti running on %s\n", addr)
	return http.ListenAndServe(addr, r.Handler())
}

// bridgeOrderEvents forwards order lifecycle events to connected admin
// dashboards as JSON frames.
func bridgeOrderEvents(hub *ws.Hub) {
	forward := func(name string) event.Handler {
		return func(payload any) {
			frame := map[string]any{"event": name, "payload": payload}
			data, err := json.Marshal(frame)
			if err != nil {
				logger.Error("server: marshal event frame", "event", name, "error", err)
				return
			}
			hub.Broadcast(data)
		}
	}
	event.Listen(event.OrderCreated, forward(event.OrderCreated))
	event.Listen(event.OrderStatusChanged, forward(event.OrderStatusChanged))
	event.Listen(event.DownloadIssued, forward(event.DownloadIssued))
	event.Listen(event.ProductDeleted, forward(event.ProductDeleted))
}
