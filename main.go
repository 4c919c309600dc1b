package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estatecore/internal/config"
	"estatecore/internal/db"
	"estatecore/internal/dispatcher"
	"estatecore/internal/gateway"
	"estatecore/internal/ingest"
	"estatecore/internal/logger"
	"estatecore/internal/normalizer"
	"estatecore/internal/realtime"
	"estatecore/internal/rules"
	"estatecore/internal/scheduler"
	"estatecore/internal/suggestions"
	"estatecore/internal/taskqueue"
	"estatecore/internal/web"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	dbConn, err := db.NewDB(ctx, cfg.DBURL)
	if err != nil {
		zlog.Fatal("database connect failed", zap.Error(err))
	}
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	hub := realtime.NewHub(redisClient, zlog)

	gw, err := gateway.Connect(gateway.Options{
		Broker:         cfg.MQTTBroker,
		ClientID:       cfg.MQTTClientID,
		PublishTimeout: time.Duration(cfg.PublishTimeoutSec) * time.Second,
	}, zlog)
	if err != nil {
		zlog.Fatal("mqtt connect failed", zap.Error(err))
	}
	defer gw.Close()

	queue := taskqueue.NewClient(cfg.RedisAddr, cfg.JobMaxRetry, zlog)
	defer queue.Close()

	worker := taskqueue.NewWorker(cfg.RedisAddr, cfg.WorkerConcurrency,
		taskqueue.NewRunHandler(cfg.TopicRoot, dbConn, gw, zlog), zlog)
	if err := worker.Start(); err != nil {
		zlog.Fatal("worker start failed", zap.Error(err))
	}
	defer worker.Shutdown()

	ruleSet := rules.Default(rules.Devices{
		Light:     cfg.RuleLightDevice,
		Generator: cfg.RuleGenDevice,
	}, time.Now)
	engine := rules.NewEngine(ruleSet, zlog)

	disp := dispatcher.New(cfg.TopicRoot, gw, dbConn, hub, zlog)
	pipeline := ingest.NewPipeline(normalizer.New(zlog), engine, disp, zlog)

	for _, filter := range gateway.EventFilters(cfg.TopicRoot) {
		if err := gw.Subscribe(filter, pipeline.HandleMessage); err != nil {
			zlog.Fatal("event subscribe failed", zap.Error(err))
		}
	}

	bridge := gateway.NewStateBridge(dbConn, hub, zlog)
	for _, filter := range []string{gateway.StateFilter(cfg.TopicRoot), gateway.EstateStateFilter(cfg.TopicRoot)} {
		if err := gw.Subscribe(filter, bridge.HandleMessage); err != nil {
			zlog.Fatal("state subscribe failed", zap.Error(err))
		}
	}

	sched := scheduler.New(dbConn, queue, zlog)
	if err := sched.Load(ctx); err != nil {
		zlog.Error("schedule load failed", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	suggestionSvc := suggestions.NewService(dbConn, hub, queue, zlog)

	webServer := web.NewWebServer(dbConn, hub, suggestionSvc, queue, cfg.JWTSecret)
	go func() {
		if err := webServer.Start(cfg.HTTPAddr); err != nil {
			zlog.Fatal("http server failed", zap.Error(err))
		}
	}()

	zlog.Info("estatecore started",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("topic_root", cfg.TopicRoot))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zlog.Info("shutting down")
}
