package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tg_shop_bot/internal/config"
	"tg_shop_bot/internal/conversation"
	"tg_shop_bot/internal/feature/customer"
	"tg_shop_bot/internal/health"
	"tg_shop_bot/internal/logging"
	"tg_shop_bot/internal/moltin"
	"tg_shop_bot/internal/store"
	"tg_shop_bot/internal/telegram"
)

const (
	storeConnectTimeout     = 10 * time.Second
	telegramShutdownTimeout = 10 * time.Second
	healthShutdownTimeout   = 5 * time.Second
)

func main() {
	configOnly := flag.Bool("config-only", false, "load and print configuration then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("configuration error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg)
	if err != nil {
		logging.Error("logger setup error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}

	if *configOnly {
		logging.Info("configuration check", logging.Fields{"event": "config_only"})
		fmt.Println("configuration check: ok")
		fmt.Println(config.FormatRedacted(cfg))
		return
	}

	logger.WithFields(logging.Fields{
		"event":         "startup",
		"database_addr": cfg.DatabaseAddr(),
		"api_base":      cfg.CommerceBaseURL,
	}).Info("configuration loaded")

	connectCtx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	sessions, err := store.NewManager(connectCtx, cfg)
	cancel()
	if err != nil {
		logger.WithError(err).Error("session store connection error")
		fmt.Fprintf(os.Stderr, "session store connection error: %v\n", err)
		os.Exit(1)
	}

	logger.WithField("event", "store_connect").Info("connected to session store")

	shop := moltin.NewClient(cfg, nil)
	registrar := customer.NewRegistrar(shop, logger)

	tgClient, err := telegram.NewClient(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("telegram client setup error")
		fmt.Fprintf(os.Stderr, "telegram client setup error: %v\n", err)
		os.Exit(1)
	}

	machine, err := conversation.NewMachine(tgClient.Gateway(), shop, registrar, logger)
	if err != nil {
		logger.WithError(err).Error("conversation setup error")
		fmt.Fprintf(os.Stderr, "conversation setup error: %v\n", err)
		os.Exit(1)
	}

	dispatcher, err := telegram.NewDispatcher(sessions, shop, machine, logger)
	if err != nil {
		logger.WithError(err).Error("dispatcher setup error")
		fmt.Fprintf(os.Stderr, "dispatcher setup error: %v\n", err)
		os.Exit(1)
	}
	tgClient.AttachDispatcher(dispatcher)

	logger.WithField("event", "telegram_ready").Info("telegram client initialized")

	healthServer := health.NewServer(cfg.HTTPPort, sessions, logger)
	go func() {
		if err := healthServer.ListenAndServe(); err != nil {
			logger.WithError(err).Error("health server error")
		}
	}()

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegramCtx, cancelTelegram := context.WithCancel(context.Background())
	tgDone := make(chan struct{})

	go func() {
		tgClient.Start(telegramCtx)
		close(tgDone)
	}()

	select {
	case <-signalCtx.Done():
		logger.WithField("event", "shutdown_signal").Info("received termination signal, stopping telegram polling")
	case <-tgDone:
		logger.WithField("event", "telegram_stopped_early").Warn("telegram client stopped before shutdown signal")
	}

	cancelTelegram()

	waitCtx, cancelWait := context.WithTimeout(context.Background(), telegramShutdownTimeout)
	select {
	case <-tgDone:
	case <-waitCtx.Done():
		logger.WithField("event", "telegram_shutdown_timeout").Warn("timed out waiting for telegram client to stop")
	}
	cancelWait()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), healthShutdownTimeout)
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("health server shutdown error")
	}
	cancelShutdown()

	if err := sessions.Close(); err != nil {
		logger.WithError(err).Error("session store close error")
	} else {
		logger.WithField("event", "store_disconnect").Info("session store disconnected")
	}

	logger.WithField("event", "shutdown_complete").Info("shutdown complete")
}
