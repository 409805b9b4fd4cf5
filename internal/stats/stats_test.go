package stats

import (
	"testing"

	"github.com/Jay666-max/shapan/internal/models"
	"github.com/stretchr/testify/assert"
)

func opening(trader string, status models.Status) models.Record {
	return models.RecordOf(models.Position{
		ID:                "p-" + trader + string(status),
		TraderID:          trader,
		Direction:         models.Long,
		OpenPrice:         100,
		Quantity:          10,
		RemainingQuantity: 10,
		Status:            status,
	})
}

func closeEvent(trader string, profit float64) models.Record {
	return models.RecordOfClose(models.CloseEvent{
		ID:         "c-" + trader,
		PositionID: "p-" + trader,
		TraderID:   trader,
		Direction:  models.Long,
		OpenPrice:  100,
		ClosePrice: 100 + profit,
		Quantity:   1,
		Profit:     profit,
	})
}

func TestForTrader(t *testing.T) {
	testCases := []struct {
		name     string
		records  []models.Record
		trader   string
		expected Summary
	}{
		{
			name:     "NoRecords",
			records:  nil,
			trader:   "A",
			expected: Summary{},
		},
		{
			name: "WinRateZeroWithoutClosedTrades",
			records: []models.Record{
				opening("A", models.StatusOpen),
			},
			trader:   "A",
			expected: Summary{OpenPositions: 1},
		},
		{
			name: "MixedResults",
			records: []models.Record{
				opening("A", models.StatusOpen),
				closeEvent("A", 25),
				closeEvent("A", -10),
				closeEvent("A", 5),
			},
			trader: "A",
			expected: Summary{
				TotalTrades:      3,
				SuccessfulTrades: 2,
				WinRate:          66.7,
				TotalProfit:      20,
				OpenPositions:    1,
			},
		},
		{
			name: "PartiallyClosedExcludedFromOpenPositions",
			records: []models.Record{
				opening("A", models.StatusPartiallyClosed),
				opening("A", models.StatusClosed),
				opening("A", models.StatusOpen),
			},
			trader:   "A",
			expected: Summary{OpenPositions: 1},
		},
		{
			name: "OtherTradersIgnored",
			records: []models.Record{
				opening("A", models.StatusOpen),
				closeEvent("A", 25),
				opening("B", models.StatusOpen),
				closeEvent("B", -100),
			},
			trader: "A",
			expected: Summary{
				TotalTrades:      1,
				SuccessfulTrades: 1,
				WinRate:          100,
				TotalProfit:      25,
				OpenPositions:    1,
			},
		},
		{
			name: "ProfitRoundedToTwoDecimals",
			records: []models.Record{
				closeEvent("A", 0.105),
				closeEvent("A", 0.105),
			},
			trader: "A",
			expected: Summary{
				TotalTrades:      2,
				SuccessfulTrades: 2,
				WinRate:          100,
				TotalProfit:      0.21,
			},
		},
		{
			name: "ZeroProfitIsNotAWin",
			records: []models.Record{
				closeEvent("A", 0),
			},
			trader: "A",
			expected: Summary{
				TotalTrades: 1,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ForTrader(tc.records, tc.trader))
		})
	}
}

func TestOverall(t *testing.T) {
	records := []models.Record{
		opening("A", models.StatusOpen),
		closeEvent("A", 25),
		opening("B", models.StatusOpen),
		closeEvent("B", -100),
		opening("C", models.StatusPartiallyClosed),
	}

	assert.Equal(t, Summary{
		TotalTrades:      2,
		SuccessfulTrades: 1,
		WinRate:          50,
		TotalProfit:      -75,
		OpenPositions:    2,
	}, Overall(records))
}

func TestPartialCloseSequenceTotals(t *testing.T) {
	// Two closes of one long position: +20 then -30 nets to -10.
	records := []models.Record{
		opening("A", models.StatusClosed),
		closeEvent("A", 20),
		closeEvent("A", -30),
	}

	s := ForTrader(records, "A")
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, 1, s.SuccessfulTrades)
	assert.Equal(t, 50.0, s.WinRate)
	assert.Equal(t, -10.0, s.TotalProfit)
	assert.Equal(t, 0, s.OpenPositions)
}
