package handler

import (
	"net/http"

	"cryptobot/src/model"
)

type snapshotter interface {
	Snapshot() *model.PortfolioSnapshot
}

// PortfolioOverviewHandler returns the full portfolio snapshot including
// risk metrics.
func PortfolioOverviewHandler(portfolio snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, portfolio.Snapshot())
	}
}

// PositionsHandler returns just the open positions.
func PositionsHandler(portfolio snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := portfolio.Snapshot()
		positions := snap.Positions
		if positions == nil {
			positions = []model.Position{}
		}
		writeJSON(w, http.StatusOK, positions)
	}
}
