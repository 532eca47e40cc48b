package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"cryptobot/src/model"
	"cryptobot/src/strategy"
)

type strategyStore interface {
	Create(ctx context.Context, strategy *model.Strategy) error
	Update(ctx context.Context, strategy *model.Strategy) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Strategy, error)
	List(ctx context.Context) ([]model.Strategy, error)
}

func validateStrategy(s *model.Strategy) error {
	if s.Name == "" {
		return &model.ConfigurationError{Reason: "strategy name is required"}
	}
	if s.Symbol == "" {
		return &model.ConfigurationError{Reason: "strategy symbol is required"}
	}
	return strategy.ValidateParams(s.Type, s.Parameters)
}

// ListStrategiesHandler returns every configured strategy.
func ListStrategiesHandler(store strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		strategies, err := store.List(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to list strategies")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, strategies)
	}
}

// CreateStrategyHandler validates and persists a new strategy.
func CreateStrategyHandler(store strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var s model.Strategy
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		s.ID = 0
		if err := validateStrategy(&s); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := store.Create(r.Context(), &s); err != nil {
			logger.WithError(err).Error("failed to create strategy")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusCreated, s)
	}
}

func strategyID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid strategy id")
	}
	return uint(id), nil
}

// GetStrategyHandler fetches one strategy by ID.
func GetStrategyHandler(store strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strategyID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s, err := store.FindByID(r.Context(), id)
		if err != nil {
			logger.WithError(err).Error("failed to fetch strategy")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if s == nil {
			writeError(w, http.StatusNotFound, "strategy not found")
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// UpdateStrategyHandler validates and saves changes to a strategy.
func UpdateStrategyHandler(store strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strategyID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		existing, err := store.FindByID(r.Context(), id)
		if err != nil {
			logger.WithError(err).Error("failed to fetch strategy")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if existing == nil {
			writeError(w, http.StatusNotFound, "strategy not found")
			return
		}

		var s model.Strategy
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		s.ID = id
		s.CreatedAt = existing.CreatedAt
		if err := validateStrategy(&s); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := store.Update(r.Context(), &s); err != nil {
			logger.WithError(err).Error("failed to update strategy")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// DeleteStrategyHandler removes a strategy.
func DeleteStrategyHandler(store strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strategyID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			logger.WithError(err).Error("failed to delete strategy")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
