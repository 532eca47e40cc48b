package connectors

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"

	"cryptobot/src/model"
	"cryptobot/src/utils"
)

// quote currencies recognized when splitting a concatenated pair symbol.
var knownQuotes = []string{"USDT", "USDC", "BUSD", "USD", "BTC", "ETH"}

// BinanceFeed pulls klines from Binance and adapts them to bars.
type BinanceFeed struct {
	exchange goex.API
	period   goex.KlinePeriod
	interval string
}

func NewBinanceFeed(cfg Config) *BinanceFeed {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return &BinanceFeed{
		exchange: binance.NewWithConfig(apiConfig),
		period:   klinePeriod(cfg.BarInterval),
		interval: cfg.BarInterval,
	}
}

func klinePeriod(interval string) goex.KlinePeriod {
	switch interval {
	case "1m":
		return goex.KLINE_PERIOD_1MIN
	case "5m":
		return goex.KLINE_PERIOD_5MIN
	case "15m":
		return goex.KLINE_PERIOD_15MIN
	case "4h":
		return goex.KLINE_PERIOD_4H
	case "1d":
		return goex.KLINE_PERIOD_1DAY
	default:
		return goex.KLINE_PERIOD_1H
	}
}

// splitPair breaks a concatenated symbol like BTCUSDT into base and quote.
func splitPair(symbol string) goex.CurrencyPair {
	upper := strings.ToUpper(symbol)
	for _, quote := range knownQuotes {
		if strings.HasSuffix(upper, quote) && len(upper) > len(quote) {
			base := strings.TrimSuffix(upper, quote)
			return goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: quote})
		}
	}
	return goex.NewCurrencyPair(goex.Currency{Symbol: upper}, goex.Currency{Symbol: "USDT"})
}

// FetchBars returns up to limit recent bars for the symbol, oldest first.
func (f *BinanceFeed) FetchBars(ctx context.Context, symbol string, limit int) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	klines, err := f.exchange.GetKlineRecords(splitPair(symbol), f.period, limit)
	if err != nil {
		return nil, &model.DataFetchError{Symbol: symbol, Err: err}
	}

	bars := make([]model.Bar, 0, len(klines))
	for _, k := range klines {
		bars = append(bars, model.Bar{
			Symbol:   symbol,
			Datetime: utils.AlignToInterval(time.Unix(k.Timestamp, 0).UTC(), f.interval),
			Interval: f.interval,
			Open:     k.Open,
			High:     k.High,
			Low:      k.Low,
			Close:    k.Close,
			Volume:   k.Vol,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Datetime.Before(bars[j].Datetime) })
	return bars, nil
}
