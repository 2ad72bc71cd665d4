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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/Alien67x6/mt5-monitoring-API/internal/api"
	"github.com/Alien67x6/mt5-monitoring-API/internal/collector"
	"github.com/Alien67x6/mt5-monitoring-API/internal/config"
	"github.com/Alien67x6/mt5-monitoring-API/internal/correlation"
	"github.com/Alien67x6/mt5-monitoring-API/internal/engine"
	"github.com/Alien67x6/mt5-monitoring-API/internal/logger"
	"github.com/Alien67x6/mt5-monitoring-API/internal/metrics"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
	"github.com/Alien67x6/mt5-monitoring-API/internal/notifier"
	"github.com/Alien67x6/mt5-monitoring-API/internal/recorder"
	"github.com/Alien67x6/mt5-monitoring-API/internal/scheduler"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	// Credentials may live in a .env file next to the binary.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("load .env: %v", err)
	}

	path := *cfgPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatal("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation: %v", err)
	}
	logger.Init(cfg.Logging.Level)
	logger.Info("crossover monitor starting, instruments: %v", cfg.Instruments)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewBridgeFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis %s unreachable, bar cache will fall through: %v", cfg.Redis.Addr, err)
		}
		fetcher = collector.NewCachedFetcher(fetcher, rdb, cfg.Redis.BarTTL)
	}
	logger.Info("data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, model.Timeframe(cfg.DataSource.Timeframe))

	// Startup probe
	probeCtx, probeCancel := context.WithTimeout(ctx, 30*time.Second)
	err = col.CheckSource(probeCtx, cfg.Instruments[0])
	probeCancel()
	if err != nil {
		logger.Fatal("market data source unavailable: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.Driver != "none" {
		sr, err := recorder.NewSQLRecorder(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			logger.Warn("init %s recorder failed, using noop: %v", cfg.Database.Driver, err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init notifiers
	var tn *notifier.TelegramNotifier
	channels := []notifier.Notifier{notifier.LogNotifier{}}
	if cfg.TelegramEnabled() {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			logger.Error("init telegram: %v", err)
		} else {
			channels = append(channels, tn)
		}
	}
	if cfg.WhatsAppEnabled() {
		channels = append(channels, notifier.NewWhatsAppNotifier(
			cfg.WhatsApp.AccountSID, cfg.WhatsApp.AuthToken, cfg.WhatsApp.From, cfg.WhatsApp.To))
	}
	if cfg.KafkaEnabled() {
		kn := notifier.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kn.Close()
		channels = append(channels, kn)
	}
	multi := notifier.NewMulti(channels...)
	logger.Info("alert channels: %v", multi.Channels())

	policy, err := engine.ParseResetPolicy(cfg.Engine.ResetPolicy)
	if err != nil {
		logger.Fatal("%v", err)
	}
	m := metrics.New(prometheus.DefaultRegisterer)
	store := correlation.NewStore(cfg.Instruments, engine.HistoryCapacity)
	eng := engine.New(col, store, multi,
		engine.WithRecorder(rec),
		engine.WithMetrics(m),
		engine.WithResetPolicy(policy),
	)

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, eng)
	if err := sched.Register(cfg.Schedule.PollCron); err != nil {
		logger.Fatal("register cron task: %v", err)
	}
	sched.Start()

	// Start Telegram command listener
	var listenerDone <-chan struct{}
	if tn != nil {
		listenerDone = tn.ListenForCommands(ctx, sched.HandleCommand)
		logger.Info("Telegram command listener started")
	}

	if cfg.Schedule.RunOnStart {
		logger.Info("RUN_ON_START enabled, running a cycle now")
		go sched.RunNow()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.SetupRoutes(api.NewHandler(eng, rec), prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server: %v", err)
		}
	}()

	logger.Info("crossover monitor is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown: %v", err)
	}
	cancel()
	sched.Stop()
	if listenerDone != nil {
		<-listenerDone
	}
	logger.Info("crossover monitor stopped")
}
