// Package stats derives per-trader and global metrics from a ledger snapshot.
// Everything is recomputed from scratch on each call; the ledger is small and
// a stateless scan has no invalidation bugs.
package stats

import (
	"math"

	"github.com/Jay666-max/shapan/internal/models"
)

// Summary holds the derived metrics for one trader, or for the whole ledger.
type Summary struct {
	TotalTrades      int     `json:"total_trades"`
	SuccessfulTrades int     `json:"successful_trades"`
	WinRate          float64 `json:"win_rate"`
	TotalProfit      float64 `json:"total_profit"`
	OpenPositions    int     `json:"open_positions"`
}

// ForTrader computes the summary over the trader's records.
func ForTrader(records []models.Record, traderID string) Summary {
	return summarize(records, func(r models.Record) bool { return r.TraderID == traderID })
}

// Overall computes the summary over every record in the snapshot.
func Overall(records []models.Record) Summary {
	return summarize(records, func(models.Record) bool { return true })
}

func summarize(records []models.Record, match func(models.Record) bool) Summary {
	var s Summary
	var profit float64

	for _, r := range records {
		if !match(r) {
			continue
		}
		if r.Profit != nil {
			s.TotalTrades++
			if *r.Profit > 0 {
				s.SuccessfulTrades++
			}
			profit += *r.Profit
		}
		// Only fully untouched opens count as open positions; a partially
		// closed record drops out of this count even with quantity left.
		if r.Kind == models.KindOpening && r.Status == models.StatusOpen {
			s.OpenPositions++
		}
	}

	// Win rate is 0 with no closed trades, never NaN.
	if s.TotalTrades > 0 {
		s.WinRate = round1(float64(s.SuccessfulTrades) / float64(s.TotalTrades) * 100)
	}
	s.TotalProfit = round2(profit)

	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
