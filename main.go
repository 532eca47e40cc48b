package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"cryptobot/src/bot"
	"cryptobot/src/connectors"
	"cryptobot/src/database"
	"cryptobot/src/model"
	"cryptobot/src/portfolio"
	"cryptobot/src/repository"
	"cryptobot/src/risk"
	"cryptobot/src/security"
	"cryptobot/src/server"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	connCfg := connectors.GetConfig()

	feed := buildFeed(connCfg)
	exchange := buildExchange(connCfg)

	strategyRep := repository.NewStrategyRepository()
	tradeRep := repository.NewTradeRepository()

	pfCfg := portfolio.GetConfig()
	tracker := portfolio.NewTracker(pfCfg.InitialCash, pfCfg.Annualization)
	controller := bot.NewController(
		bot.GetConfig(),
		feed,
		exchange,
		tradeRep,
		tracker,
		risk.NewManager(risk.DefaultConfig()),
		model.DefaultRiskLimits(),
	)
	controller.SetStrategyLoader(func(ctx context.Context) ([]model.Strategy, error) {
		return strategyRep.List(ctx)
	})

	go streamPrices(connCfg, strategyRep, tracker)

	router := server.NewRouter(controller, tracker, strategyRep, tradeRep)
	server.StartServer(server.GetConfig().Port, router)

	if err := controller.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop bot cleanly")
	}
}

func buildFeed(cfg connectors.Config) bot.MarketDataFeed {
	if cfg.FeedSource == "database" {
		logger.Info("Using stored bars as market data feed")
		return repository.NewBarRepository()
	}
	return connectors.NewBinanceFeed(cfg)
}

func buildExchange(cfg connectors.Config) bot.ExchangeAdapter {
	if cfg.ExchangeAdapter != "gateway" {
		logger.Info("Using paper exchange adapter")
		return connectors.NewPaperExchange()
	}

	// Prefer credentials sealed in the database over the environment.
	credRep := repository.NewCredentialRepository()
	cred, err := credRep.FindByExchange(context.Background(), "gateway")
	if err != nil {
		logger.WithError(err).Fatal("Failed to load gateway credentials")
	}
	if cred != nil {
		apiKey, err := security.DecryptString(cred.APIKeySealed)
		if err != nil {
			logger.WithError(err).Fatal("Failed to decrypt API key")
		}
		apiSecret, err := security.DecryptString(cred.APISecretSealed)
		if err != nil {
			logger.WithError(err).Fatal("Failed to decrypt API secret")
		}
		cfg.APIKey, cfg.APISecret = apiKey, apiSecret
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		logger.Fatal("No gateway credentials configured")
	}
	return connectors.NewGatewayExchange(cfg)
}

// streamPrices keeps the portfolio marked to market from the live ticker
// stream. With no live feed configured it does nothing.
func streamPrices(cfg connectors.Config, strategyRep *repository.StrategyRepository, tracker *portfolio.Tracker) {
	if cfg.FeedSource == "database" {
		return
	}

	strategies, err := strategyRep.List(context.Background())
	if err != nil {
		logger.WithError(err).Warn("Failed to list strategies for ticker stream")
		return
	}
	seen := map[string]bool{}
	var symbols []string
	for _, s := range strategies {
		if !seen[s.Symbol] {
			seen[s.Symbol] = true
			symbols = append(symbols, s.Symbol)
		}
	}
	if len(symbols) == 0 {
		return
	}

	stream := connectors.NewTickerStream(cfg, symbols)
	go func() {
		for update := range stream.Updates() {
			tracker.MarkToMarket(map[string]float64{update.Symbol: update.Price})
		}
	}()
	if err := stream.Run(context.Background()); err != nil {
		logger.WithError(err).Error("Ticker stream terminated")
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
