package models

import (
	"math"
	"time"
)

// Candle represents one OHLCV record. Parsing is external; the core
// only consumes the in-memory sequence.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// LogReturns computes log close-to-close returns over an ordered
// candle sequence. The result has len(candles)-1 entries.
func LogReturns(candles []Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		if candles[i-1].Close <= 0 || candles[i].Close <= 0 {
			continue
		}
		returns = append(returns, math.Log(candles[i].Close/candles[i-1].Close))
	}
	return returns
}
