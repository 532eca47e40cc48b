package model

import "time"

// Bar is one OHLCV candle. Bars are ordered oldest-first everywhere a
// series is passed around; Datetime is the bar open time in UTC.
type Bar struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Symbol   string    `gorm:"size:50;not null;uniqueIndex:idx_bars_symbol_datetime" json:"symbol"`
	Interval string    `gorm:"size:10;not null;default:1h" json:"interval"`
	Datetime time.Time `gorm:"not null;uniqueIndex:idx_bars_symbol_datetime" json:"datetime"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

func (Bar) TableName() string {
	return "bars"
}

// Closes extracts the close series from an ordered bar slice.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Close
	}
	return out
}
