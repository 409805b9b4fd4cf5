package models

// RecordKind discriminates the two record kinds in a ledger snapshot.
type RecordKind string

const (
	KindOpening    RecordKind = "OPENING"
	KindCloseEvent RecordKind = "CLOSE_EVENT"
)

// Record is a flat, read-only view over both record kinds, used by the read
// interface, the statistics aggregator and the export report. It is built from
// a valid Position or CloseEvent and never stored or mutated.
type Record struct {
	Kind              RecordKind `json:"kind"`
	ID                string     `json:"id"`
	TraderID          string     `json:"trader"`
	Direction         Direction  `json:"direction"`
	OpenPrice         float64    `json:"open_price"`
	ClosePrice        *float64   `json:"close_price,omitempty"`
	Quantity          int        `json:"quantity"`
	RemainingQuantity int        `json:"remaining_quantity"`
	Profit            *float64   `json:"profit,omitempty"`
	Status            Status     `json:"status"`
	Timestamp         int64      `json:"timestamp"`
	RelatedID         string     `json:"related_trade_id,omitempty"`
}

// RecordOf flattens an opening record into the snapshot view.
func RecordOf(p Position) Record {
	return Record{
		Kind:              KindOpening,
		ID:                p.ID,
		TraderID:          p.TraderID,
		Direction:         p.Direction,
		OpenPrice:         p.OpenPrice,
		Quantity:          p.Quantity,
		RemainingQuantity: p.RemainingQuantity,
		Status:            p.Status,
		Timestamp:         p.Timestamp,
	}
}

// RecordOfClose flattens a close-event record into the snapshot view.
// Close events carry no remaining quantity and are always CLOSED.
func RecordOfClose(c CloseEvent) Record {
	closePrice := c.ClosePrice
	profit := c.Profit
	return Record{
		Kind:       KindCloseEvent,
		ID:         c.ID,
		TraderID:   c.TraderID,
		Direction:  c.Direction,
		OpenPrice:  c.OpenPrice,
		ClosePrice: &closePrice,
		Quantity:   c.Quantity,
		Profit:     &profit,
		Status:     StatusClosed,
		Timestamp:  c.Timestamp,
		RelatedID:  c.PositionID,
	}
}
