package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"

	"cryptobot/src/bot"
	"cryptobot/src/model"
	"cryptobot/src/strategy"
)

// BotController is the controller surface the trading endpoints need.
type BotController interface {
	Start(ctx context.Context) error
	Pause() error
	Resume() error
	Stop() error
	Status() bot.Status
	RecentSignals(limit int) []bot.AuditEntry
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// lifecycleStatus maps lifecycle errors to the right HTTP status:
// configuration problems are the client's to fix, invalid transitions are
// conflicts.
func lifecycleStatus(err error) int {
	var cfgErr *model.ConfigurationError
	if errors.As(err, &cfgErr) {
		return http.StatusBadRequest
	}
	return http.StatusConflict
}

// StartTradingHandler starts the bot loop.
func StartTradingHandler(controller BotController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The loop must outlive this request, so it gets its own context.
		if err := controller.Start(context.Background()); err != nil {
			logger.WithError(err).Warn("failed to start bot")
			writeError(w, lifecycleStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, controller.Status())
	}
}

// PauseTradingHandler suspends signal evaluation.
func PauseTradingHandler(controller BotController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := controller.Pause(); err != nil {
			writeError(w, lifecycleStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, controller.Status())
	}
}

// ResumeTradingHandler continues evaluation after a pause.
func ResumeTradingHandler(controller BotController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := controller.Resume(); err != nil {
			writeError(w, lifecycleStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, controller.Status())
	}
}

// StopTradingHandler terminates the bot loop.
func StopTradingHandler(controller BotController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := controller.Stop(); err != nil {
			writeError(w, lifecycleStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, controller.Status())
	}
}

// TradingStatusHandler reports the controller state.
func TradingStatusHandler(controller BotController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controller.Status())
	}
}

// RecentSignalsHandler lists the latest signals with their risk outcomes.
func RecentSignalsHandler(controller BotController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}
		entries := controller.RecentSignals(limit)
		if entries == nil {
			entries = []bot.AuditEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// StrategyCatalogHandler describes the available strategy types and
// their tunable parameters.
func StrategyCatalogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, strategy.Catalog())
	}
}
