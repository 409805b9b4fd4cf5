package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Jay666-max/shapan/internal/id"
	"github.com/Jay666-max/shapan/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger owns the authoritative record set: opening positions, close events
// and the trader roster. All mutation goes through its operations; callers
// only ever see snapshot copies. The engine enforces every invariant itself,
// regardless of what the presentation layer pre-validated.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger

	// Serializes close operations so the read-decrement-append sequence on a
	// position is one atomic unit even with concurrent HTTP callers.
	mu sync.Mutex
}

// New creates a Ledger on top of a migrated database.
func New(db *gorm.DB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// Open appends a new opening position for the trader.
// The trader id must be on the roster; unknown ids are rejected with
// ErrNotFound rather than accepted silently.
func (l *Ledger) Open(traderID string, direction models.Direction, price float64, quantity int) (*models.Position, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("direction %q: %w", direction, ErrInvalidArgument)
	}
	if price <= 0 {
		return nil, fmt.Errorf("open price %v must be positive: %w", price, ErrInvalidArgument)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity %d must be positive: %w", quantity, ErrInvalidArgument)
	}

	var trader models.Trader
	if err := l.db.First(&trader, "id = ?", traderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("trader %q: %w", traderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up trader %q: %w", traderID, err)
	}

	position := models.Position{
		ID:                id.New(),
		TraderID:          traderID,
		Direction:         direction,
		OpenPrice:         price,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		Status:            models.StatusOpen,
		Timestamp:         time.Now().UnixMilli(),
	}

	if err := l.db.Create(&position).Error; err != nil {
		return nil, fmt.Errorf("failed to record opening position: %w", err)
	}

	l.logger.Info("Opened position",
		zap.String("position_id", position.ID),
		zap.String("trader", traderID),
		zap.String("direction", string(direction)),
		zap.Float64("price", price),
		zap.Int("quantity", quantity),
	)

	return &position, nil
}

// Close realizes closeQuantity units of an opening position at closePrice.
// It decrements the position's remaining quantity, advances its status and
// appends an immutable close event carrying the realized profit:
//
//	LONG:  (closePrice - openPrice) * closeQuantity
//	SHORT: (openPrice - closePrice) * closeQuantity
//
// The whole sequence runs in one transaction; on any failure the ledger is
// left unchanged.
func (l *Ledger) Close(positionID string, closePrice float64, closeQuantity int) (*models.CloseEvent, error) {
	if closePrice <= 0 {
		return nil, fmt.Errorf("close price %v must be positive: %w", closePrice, ErrInvalidArgument)
	}
	if closeQuantity <= 0 {
		return nil, fmt.Errorf("close quantity %d must be positive: %w", closeQuantity, ErrInvalidArgument)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var event models.CloseEvent
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var position models.Position
		if err := tx.First(&position, "id = ?", positionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("position %q: %w", positionID, ErrNotFound)
			}
			return fmt.Errorf("failed to load position %q: %w", positionID, err)
		}

		if closeQuantity > position.RemainingQuantity {
			return fmt.Errorf("close quantity %d exceeds remaining quantity %d: %w",
				closeQuantity, position.RemainingQuantity, ErrInvalidArgument)
		}

		remaining := position.RemainingQuantity - closeQuantity
		status := models.StatusPartiallyClosed
		if remaining == 0 {
			status = models.StatusClosed
		}

		updates := map[string]interface{}{
			"remaining_quantity": remaining,
			"status":             status,
		}
		if err := tx.Model(&position).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update position %q: %w", positionID, err)
		}

		event = models.CloseEvent{
			ID:         id.New(),
			PositionID: position.ID,
			TraderID:   position.TraderID,
			Direction:  position.Direction,
			OpenPrice:  position.OpenPrice,
			ClosePrice: closePrice,
			Quantity:   closeQuantity,
			Profit:     models.ProfitFor(position.Direction, position.OpenPrice, closePrice, closeQuantity),
			Timestamp:  time.Now().UnixMilli(),
		}

		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record close event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Closed position",
		zap.String("position_id", positionID),
		zap.String("close_id", event.ID),
		zap.Float64("close_price", closePrice),
		zap.Int("quantity", closeQuantity),
		zap.Float64("profit", event.Profit),
	)

	return &event, nil
}

// PreviewClose computes the profit a close would realize without mutating the
// ledger. Validation matches Close, so a successful preview means the same
// close would be accepted at this instant.
func (l *Ledger) PreviewClose(positionID string, closePrice float64, closeQuantity int) (float64, error) {
	if closePrice <= 0 {
		return 0, fmt.Errorf("close price %v must be positive: %w", closePrice, ErrInvalidArgument)
	}
	if closeQuantity <= 0 {
		return 0, fmt.Errorf("close quantity %d must be positive: %w", closeQuantity, ErrInvalidArgument)
	}

	position, err := l.Position(positionID)
	if err != nil {
		return 0, err
	}
	if closeQuantity > position.RemainingQuantity {
		return 0, fmt.Errorf("close quantity %d exceeds remaining quantity %d: %w",
			closeQuantity, position.RemainingQuantity, ErrInvalidArgument)
	}

	return models.ProfitFor(position.Direction, position.OpenPrice, closePrice, closeQuantity), nil
}

// Reset clears all trade records. The trader roster is untouched. Resetting an
// empty ledger is a no-op.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CloseEvent{}).Error; err != nil {
			return fmt.Errorf("failed to clear close events: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Position{}).Error; err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("Ledger reset, trader roster preserved")
	return nil
}

// RenameTrader replaces a trader's display name. Records keep referencing the
// trader by id, so history is unaffected.
func (l *Ledger) RenameTrader(traderID, name string) error {
	if name == "" {
		return fmt.Errorf("trader name must not be empty: %w", ErrInvalidArgument)
	}

	result := l.db.Model(&models.Trader{}).Where("id = ?", traderID).Update("name", name)
	if result.Error != nil {
		return fmt.Errorf("failed to rename trader %q: %w", traderID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("trader %q: %w", traderID, ErrNotFound)
	}

	l.logger.Info("Renamed trader", zap.String("trader", traderID), zap.String("name", name))
	return nil
}

// Position returns a copy of one opening record.
func (l *Ledger) Position(positionID string) (*models.Position, error) {
	var position models.Position
	if err := l.db.First(&position, "id = ?", positionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("position %q: %w", positionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load position %q: %w", positionID, err)
	}
	return &position, nil
}

// Records returns the full ledger as one sequence ordered by creation.
// Record ids are monotonic ULIDs, so lexicographic id order is insertion
// order across both record kinds.
func (l *Ledger) Records() ([]models.Record, error) {
	var positions []models.Position
	if err := l.db.Order("id").Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	var events []models.CloseEvent
	if err := l.db.Order("id").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to load close events: %w", err)
	}

	records := make([]models.Record, 0, len(positions)+len(events))
	for _, p := range positions {
		records = append(records, models.RecordOf(p))
	}
	for _, e := range events {
		records = append(records, models.RecordOfClose(e))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	return records, nil
}

// Traders returns the current roster ordered by id.
func (l *Ledger) Traders() ([]models.Trader, error) {
	var traders []models.Trader
	if err := l.db.Order("id").Find(&traders).Error; err != nil {
		return nil, fmt.Errorf("failed to load traders: %w", err)
	}
	return traders, nil
}
