package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"cryptobot/src/handler"
	"cryptobot/src/portfolio"
	"cryptobot/src/repository"
)

// NewRouter builds the API router.
func NewRouter(controller handler.BotController, tracker *portfolio.Tracker, strategies *repository.StrategyRepository, trades *repository.TradeRepository) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write failed")
		}
	})

	r.Route("/trading", func(r chi.Router) {
		r.Post("/start", handler.StartTradingHandler(controller))
		r.Post("/pause", handler.PauseTradingHandler(controller))
		r.Post("/resume", handler.ResumeTradingHandler(controller))
		r.Post("/stop", handler.StopTradingHandler(controller))
		r.Get("/status", handler.TradingStatusHandler(controller))
		r.Get("/signals", handler.RecentSignalsHandler(controller))
		r.Get("/strategies", handler.StrategyCatalogHandler())
	})

	r.Route("/strategies", func(r chi.Router) {
		r.Get("/", handler.ListStrategiesHandler(strategies))
		r.Post("/", handler.CreateStrategyHandler(strategies))
		r.Get("/{id}", handler.GetStrategyHandler(strategies))
		r.Put("/{id}", handler.UpdateStrategyHandler(strategies))
		r.Delete("/{id}", handler.DeleteStrategyHandler(strategies))
	})

	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/overview", handler.PortfolioOverviewHandler(tracker))
		r.Get("/positions", handler.PositionsHandler(tracker))
	})

	r.Get("/history/trades", handler.SearchTradesHandler(trades))

	return r
}

// StartServer serves the router until SIGINT or SIGTERM, then shuts down
// gracefully.
func StartServer(port string, router http.Handler) {
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
