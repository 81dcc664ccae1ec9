package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	vidq "github.com/vidq/vidq-go"
	"github.com/vidq/vidq-go/internal/config"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	log := newLogger(cfg.Log.Level)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("redis unreachable at %s: %v", cfg.Redis.Addr, err)
	}

	srv := vidq.NewServer(rdb, vidq.ServerConfig{
		Concurrency:   cfg.Worker.Concurrency,
		VisibilityTTL: cfg.Worker.VisibilityTTL.Std(),
		RunTimeout:    cfg.Worker.RunTimeout.Std(),
		DownloadDir:   cfg.Downloads.Dir,
		HistoryLimit:  cfg.Downloads.HistoryLimit,
		Logger:        vidq.NewLogrusLogger(log),
	}, vidq.NewYTDLP())

	srv.Start()
	log.Infof("worker started: redis=%s concurrency=%d dir=%s",
		cfg.Redis.Addr, cfg.Worker.Concurrency, cfg.Downloads.Dir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("signal received; stopping worker")
	srv.Stop()
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
