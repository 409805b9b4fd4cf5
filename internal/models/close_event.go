package models

// CloseEvent is a close-event record: one realization against an opening
// Position. Trader, direction and open price are copied from the position so
// the record is self-contained. Close events are append-only and never edited.
type CloseEvent struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	PositionID string    `gorm:"index;not null" json:"related_trade_id"`
	TraderID   string    `gorm:"index;not null" json:"trader"`
	Direction  Direction `gorm:"not null" json:"direction"`
	OpenPrice  float64   `gorm:"not null" json:"open_price"`
	ClosePrice float64   `gorm:"not null" json:"close_price"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	Profit     float64   `gorm:"not null" json:"profit"`
	Timestamp  int64     `gorm:"not null" json:"timestamp"` // unix milliseconds
}

// ProfitFor applies the realized profit rule for one close.
//
//	LONG:  (closePrice - openPrice) * quantity
//	SHORT: (openPrice - closePrice) * quantity
func ProfitFor(direction Direction, openPrice, closePrice float64, quantity int) float64 {
	if direction == Long {
		return (closePrice - openPrice) * float64(quantity)
	}
	return (openPrice - closePrice) * float64(quantity)
}
