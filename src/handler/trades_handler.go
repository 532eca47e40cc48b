package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	logger "github.com/sirupsen/logrus"

	"cryptobot/src/model"
	"cryptobot/src/repository"
)

type tradeSearcher interface {
	Search(ctx context.Context, options repository.TradeSearchOptions) ([]model.Trade, error)
}

// SearchTradesHandler lists trade history with pagination and filters
// (symbol, side, strategyId, from, to).
func SearchTradesHandler(repo tradeSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var symbol *string
		if symbolParam := r.URL.Query().Get("symbol"); symbolParam != "" {
			symbol = &symbolParam
		}

		var side *string
		if sideParam := r.URL.Query().Get("side"); sideParam != "" {
			if sideParam != model.SideBuy && sideParam != model.SideSell {
				writeError(w, http.StatusBadRequest, "invalid side")
				return
			}
			side = &sideParam
		}

		var strategyID *uint
		if strategyParam := r.URL.Query().Get("strategyId"); strategyParam != "" {
			id, err := strconv.ParseUint(strategyParam, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid strategyId")
				return
			}
			parsed := uint(id)
			strategyID = &parsed
		}

		var after, before *time.Time
		if fromParam := r.URL.Query().Get("from"); fromParam != "" {
			parsed, err := time.Parse(time.RFC3339, fromParam)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid from")
				return
			}
			after = &parsed
		}
		if toParam := r.URL.Query().Get("to"); toParam != "" {
			parsed, err := time.Parse(time.RFC3339, toParam)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid to")
				return
			}
			before = &parsed
		}

		page := 1
		if pageParam := r.URL.Query().Get("page"); pageParam != "" {
			parsedPage, err := strconv.Atoi(pageParam)
			if err != nil || parsedPage <= 0 {
				writeError(w, http.StatusBadRequest, "invalid page")
				return
			}
			page = parsedPage
		}

		pageSize := 20
		if sizeParam := r.URL.Query().Get("pageSize"); sizeParam != "" {
			parsedSize, err := strconv.Atoi(sizeParam)
			if err != nil || parsedSize <= 0 {
				writeError(w, http.StatusBadRequest, "invalid pageSize")
				return
			}
			pageSize = parsedSize
		}

		trades, err := repo.Search(r.Context(), repository.TradeSearchOptions{
			Symbol:     symbol,
			Side:       side,
			StrategyID: strategyID,
			After:      after,
			Before:     before,
			Limit:      pageSize,
			Offset:     (page - 1) * pageSize,
		})
		if err != nil {
			logger.WithError(err).Error("failed to search trades")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if trades == nil {
			trades = []model.Trade{}
		}
		writeJSON(w, http.StatusOK, trades)
	}
}
