package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cryptobot/src/model"
)

func TestTradeRepositorySearch(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TradeRepository{}).WithDB(mockDB)

	at := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	trades := []model.Trade{
		{ID: 1, Symbol: "BTCUSDT", Side: model.SideBuy, Quantity: 0.04, Price: 50000, Timestamp: at},
		{ID: 2, Symbol: "ETHUSDT", Side: model.SideSell, Quantity: 1, Price: 3000, Timestamp: at.Add(24 * time.Hour)},
		{ID: 3, Symbol: "BTCUSDT", Side: model.SideSell, Quantity: 0.04, Price: 52000, Timestamp: at.Add(48 * time.Hour)},
	}

	tradeRows := func(returned ...model.Trade) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"id", "symbol", "side", "quantity", "price", "timestamp"})
		for _, trade := range returned {
			rows.AddRow(trade.ID, trade.Symbol, trade.Side, trade.Quantity, trade.Price, trade.Timestamp)
		}
		return rows
	}

	t.Run("filters by symbol", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE symbol = $1 ORDER BY timestamp DESC, id DESC`)).
			WithArgs("BTCUSDT").
			WillReturnRows(tradeRows(trades[2], trades[0]))

		results, err := repo.Search(context.Background(), TradeSearchOptions{Symbol: ptrString("BTCUSDT")})
		if err != nil {
			t.Fatalf("unexpected error searching trades: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 BTCUSDT trades, got %d", len(results))
		}
		if results[0].Price != 52000 {
			t.Fatalf("trades not returned newest first: %+v", results)
		}
	})

	t.Run("filters by side and time window", func(t *testing.T) {
		filters := TradeSearchOptions{
			Side:   ptrString(model.SideSell),
			After:  ptrTime(at.Add(12 * time.Hour)),
			Before: ptrTime(at.Add(36 * time.Hour)),
		}
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE side = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp DESC, id DESC`)).
			WithArgs(model.SideSell, *filters.After, *filters.Before).
			WillReturnRows(tradeRows(trades[1]))

		results, err := repo.Search(context.Background(), filters)
		if err != nil {
			t.Fatalf("unexpected error searching trades: %v", err)
		}
		if len(results) != 1 || results[0].Symbol != "ETHUSDT" {
			t.Fatalf("unexpected trades returned: %+v", results)
		}
	})

	t.Run("applies pagination", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" ORDER BY timestamp DESC, id DESC LIMIT $1 OFFSET $2`)).
			WithArgs(1, 1).
			WillReturnRows(tradeRows(trades[1]))

		results, err := repo.Search(context.Background(), TradeSearchOptions{Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("unexpected error searching trades: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 trade for pagination, got %d", len(results))
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

func ptrString(val string) *string {
	return &val
}

func ptrTime(val time.Time) *time.Time {
	return &val
}
