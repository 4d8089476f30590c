package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kalakriti/app/jobs"
	"github.com/shashiranjanraj/kalakriti/config"
	"github.com/shashiranjanraj/kalakriti/pkg/cache"
	"github.com/shashiranjanraj/kalakriti/pkg/database"
	"github.com/shashiranjanraj/kalakriti/pkg/queue"
)

var queueWorkersFlag int

// kalakriti queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := bootDB(); err != nil {
			return err
		}
		if config.QueueDriver() == "redis" {
			if err := cache.Connect(); err != nil {
				return fmt.Errorf("queue:work: redis driver requested: %w", err)
			}
			queue.SetDriver(queue.NewRedisDriver(cache.RDB))
		}
		if err := queue.UseDB(database.DB); err != nil {
			return err
		}
		jobs.RegisterAll()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}

		fmt.Printf("🚀 Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\n⚡ Queue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
