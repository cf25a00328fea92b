package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/eco-ops-dashboard/internal/api/http"
	"github.com/i474232898/eco-ops-dashboard/internal/publisher"
	"github.com/i474232898/eco-ops-dashboard/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and background sync",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	redisClient := publisher.NewRedisClient(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
	}
	var pub scheduler.Publisher
	if stream := publisher.NewRedisStream(redisClient, a.cfg.RedisStream); stream.Enabled() {
		pub = stream
	}

	sched := scheduler.New(a.fetcher, pub, a.cfg.DefaultLocation, a.cfg.SyncInterval, a.log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	server := httpapi.NewApp(httpapi.Deps{
		Hours:    a.hours,
		Stats:    a.aggregator,
		Fetcher:  a.fetcher,
		Sync:     sched,
		Notifier: a.notifier,
		Log:      a.log,
		Info: httpapi.Info{
			App:             a.cfg.AppName,
			Environment:     a.cfg.Env,
			DefaultLocation: a.cfg.DefaultLocation,
			Mock:            a.cfg.MockData,
		},
	})

	go func() {
		a.log.Infow("server_listening", "port", a.cfg.Port, "mock", a.cfg.MockData)
		if err := server.Listen(":" + a.cfg.Port); err != nil {
			a.log.Errorw("server_stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		a.log.Warnw("shutdown_failed", "error", err)
	}
	return nil
}
