package models

// Trader represents a participant in the sandbox game.
// The roster is seeded from config at startup; traders are renamed but never deleted.
type Trader struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}
