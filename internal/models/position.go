package models

// Direction is the side of a position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// Status is the lifecycle state of an opening record.
// A position starts OPEN, moves to PARTIALLY_CLOSED after the first partial
// close, and ends CLOSED once the remaining quantity reaches zero. It never
// moves back.
type Status string

const (
	StatusOpen            Status = "OPEN"
	StatusPartiallyClosed Status = "PARTIALLY_CLOSED"
	StatusClosed          Status = "CLOSED"
)

// Position is an opening record: a position established by a trader at a
// price and size. It is the only mutable record kind; closes decrement
// RemainingQuantity and advance Status.
type Position struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	TraderID          string    `gorm:"index;not null" json:"trader"`
	Direction         Direction `gorm:"not null" json:"direction"`
	OpenPrice         float64   `gorm:"not null" json:"open_price"`
	Quantity          int       `gorm:"not null" json:"quantity"`
	RemainingQuantity int       `gorm:"not null" json:"remaining_quantity"`
	Status            Status    `gorm:"not null" json:"status"`
	Timestamp         int64     `gorm:"not null" json:"timestamp"` // unix milliseconds
}
