package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"cryptobot/src/model"
)

func TestStrategyRepositoryListActive(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&StrategyRepository{}).WithDB(mockDB)

	rows := sqlmock.NewRows([]string{"id", "name", "type", "symbol", "active"}).
		AddRow(1, "btc rsi", model.StrategyTypeRSI, "BTCUSDT", true).
		AddRow(3, "eth macd", model.StrategyTypeMACD, "ETHUSDT", true)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "strategies" WHERE active = $1 ORDER BY id`)).
		WithArgs(true).
		WillReturnRows(rows)

	strategies, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error listing active strategies: %v", err)
	}
	if len(strategies) != 2 {
		t.Fatalf("expected 2 active strategies, got %d", len(strategies))
	}
	if strategies[0].Type != model.StrategyTypeRSI || strategies[1].Symbol != "ETHUSDT" {
		t.Fatalf("unexpected strategies: %+v", strategies)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestStrategyRepositoryFindByIDNotFound(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&StrategyRepository{}).WithDB(mockDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "strategies" WHERE "strategies"."id" = $1 ORDER BY "strategies"."id" LIMIT $2`)).
		WithArgs(99, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	strategy, err := repo.FindByID(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != nil {
		t.Fatalf("expected nil for missing strategy, got %+v", strategy)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
