package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	vidq "github.com/vidq/vidq-go"
	"github.com/vidq/vidq-go/internal/config"
	"github.com/vidq/vidq-go/internal/httpapi"
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

	client := vidq.NewClient(rdb, vidq.ClientConfig{
		DownloadDir:  cfg.Downloads.Dir,
		HistoryLimit: cfg.Downloads.HistoryLimit,
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	httpapi.RegisterHandlers(r, client, cfg.Downloads.Dir, vidq.NewLogrusLogger(log))

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		log.Infof("api listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("signal received; shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
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
