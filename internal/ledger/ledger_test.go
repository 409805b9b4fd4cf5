package ledger

import (
	"testing"

	"github.com/Jay666-max/shapan/internal/config"
	"github.com/Jay666-max/shapan/internal/database"
	"github.com/Jay666-max/shapan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTest creates a ledger over a fresh in-memory database with a seeded
// roster. Each test gets its own non-shared database for isolation.
func setupTest(t *testing.T) *Ledger {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	seeds := []config.TraderSeed{
		{ID: "A", Name: "交易员A"},
		{ID: "B", Name: "交易员B"},
		{ID: "C", Name: "交易员C"},
	}
	require.NoError(t, database.Migrate(db, seeds))

	return New(db, zap.NewNop())
}

func TestOpen(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := setupTest(t)

		position, err := l.Open("A", models.Long, 100, 10)

		assert.NoError(t, err)
		assert.NotEmpty(t, position.ID)
		assert.Equal(t, "A", position.TraderID)
		assert.Equal(t, models.Long, position.Direction)
		assert.Equal(t, 100.0, position.OpenPrice)
		assert.Equal(t, 10, position.Quantity)
		assert.Equal(t, 10, position.RemainingQuantity)
		assert.Equal(t, models.StatusOpen, position.Status)
		assert.Greater(t, position.Timestamp, int64(0))
	})

	t.Run("InvalidInput", func(t *testing.T) {
		l := setupTest(t)

		testCases := []struct {
			name      string
			direction models.Direction
			price     float64
			quantity  int
		}{
			{"ZeroPrice", models.Long, 0, 10},
			{"NegativePrice", models.Long, -5, 10},
			{"ZeroQuantity", models.Short, 50, 0},
			{"NegativeQuantity", models.Short, 50, -1},
			{"UnknownDirection", models.Direction("SIDEWAYS"), 50, 10},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := l.Open("A", tc.direction, tc.price, tc.quantity)
				assert.ErrorIs(t, err, ErrInvalidArgument)
			})
		}
	})

	t.Run("UnknownTrader", func(t *testing.T) {
		l := setupTest(t)

		_, err := l.Open("Z", models.Long, 100, 10)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClose_FullClose(t *testing.T) {
	// Long 10 @ 100, closed entirely @ 110 -> profit (110-100)*10 = 100.
	l := setupTest(t)
	position, err := l.Open("A", models.Long, 100, 10)
	require.NoError(t, err)

	event, err := l.Close(position.ID, 110, 10)

	assert.NoError(t, err)
	assert.Equal(t, 100.0, event.Profit)
	assert.Equal(t, position.ID, event.PositionID)
	assert.Equal(t, "A", event.TraderID)
	assert.Equal(t, models.Long, event.Direction)
	assert.Equal(t, 100.0, event.OpenPrice)
	assert.Equal(t, 110.0, event.ClosePrice)
	assert.Equal(t, 10, event.Quantity)

	reloaded, err := l.Position(position.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.RemainingQuantity)
	assert.Equal(t, models.StatusClosed, reloaded.Status)
}

func TestClose_Short(t *testing.T) {
	// Short 4 @ 50, closed @ 45 -> profit (50-45)*4 = 20.
	l := setupTest(t)
	position, err := l.Open("B", models.Short, 50, 4)
	require.NoError(t, err)

	event, err := l.Close(position.ID, 45, 4)

	assert.NoError(t, err)
	assert.Equal(t, 20.0, event.Profit)
}

func TestClose_Partial(t *testing.T) {
	// Long 10 @ 100; close 4 @ 105 (profit 20), then 6 @ 95 (profit -30).
	l := setupTest(t)
	position, err := l.Open("A", models.Long, 100, 10)
	require.NoError(t, err)

	first, err := l.Close(position.ID, 105, 4)
	require.NoError(t, err)
	assert.Equal(t, 20.0, first.Profit)

	mid, err := l.Position(position.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, mid.RemainingQuantity)
	assert.Equal(t, models.StatusPartiallyClosed, mid.Status)

	second, err := l.Close(position.ID, 95, 6)
	require.NoError(t, err)
	assert.Equal(t, -30.0, second.Profit)

	final, err := l.Position(position.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, final.RemainingQuantity)
	assert.Equal(t, models.StatusClosed, final.Status)

	// Trader total across both closes is -10.
	assert.Equal(t, -10.0, first.Profit+second.Profit)
}

func TestClose_NeverReopens(t *testing.T) {
	l := setupTest(t)
	position, err := l.Open("A", models.Long, 100, 10)
	require.NoError(t, err)

	for _, qty := range []int{1, 1, 1} {
		_, err := l.Close(position.ID, 101, qty)
		require.NoError(t, err)

		reloaded, err := l.Position(position.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPartiallyClosed, reloaded.Status)
	}
}

func TestClose_QuantityConservation(t *testing.T) {
	// Closed quantities plus remaining always equal the original size.
	l := setupTest(t)
	position, err := l.Open("B", models.Short, 80, 9)
	require.NoError(t, err)

	closed := 0
	for _, qty := range []int{2, 3, 1} {
		_, err := l.Close(position.ID, 79, qty)
		require.NoError(t, err)
		closed += qty

		reloaded, err := l.Position(position.ID)
		require.NoError(t, err)
		assert.Equal(t, position.Quantity, closed+reloaded.RemainingQuantity)
	}
}

func TestClose_Overdraw(t *testing.T) {
	// Closing 11 against a remaining quantity of 10 must fail and leave the
	// ledger untouched.
	l := setupTest(t)
	position, err := l.Open("A", models.Long, 100, 10)
	require.NoError(t, err)

	_, err = l.Close(position.ID, 110, 11)

	assert.ErrorIs(t, err, ErrInvalidArgument)

	reloaded, err := l.Position(position.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.RemainingQuantity)
	assert.Equal(t, models.StatusOpen, reloaded.Status)

	records, err := l.Records()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestClose_InvalidInput(t *testing.T) {
	l := setupTest(t)
	position, err := l.Open("A", models.Long, 100, 10)
	require.NoError(t, err)

	_, err = l.Close(position.ID, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = l.Close(position.ID, 105, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = l.Close(position.ID, 105, -2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestClose_NotFound(t *testing.T) {
	l := setupTest(t)

	_, err := l.Close("no-such-position", 110, 1)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPreviewClose(t *testing.T) {
	l := setupTest(t)
	position, err := l.Open("B", models.Short, 50, 4)
	require.NoError(t, err)

	profit, err := l.PreviewClose(position.ID, 45, 4)

	assert.NoError(t, err)
	assert.Equal(t, 20.0, profit)

	// Preview must not mutate anything.
	reloaded, err := l.Position(position.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.RemainingQuantity)
	assert.Equal(t, models.StatusOpen, reloaded.Status)

	_, err = l.PreviewClose(position.ID, 45, 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReset(t *testing.T) {
	l := setupTest(t)
	position, err := l.Open("A", models.Long, 100, 10)
	require.NoError(t, err)
	_, err = l.Close(position.ID, 110, 4)
	require.NoError(t, err)

	require.NoError(t, l.Reset())

	records, err := l.Records()
	require.NoError(t, err)
	assert.Empty(t, records)

	traders, err := l.Traders()
	require.NoError(t, err)
	assert.Len(t, traders, 3)

	// Idempotent on an empty ledger.
	assert.NoError(t, l.Reset())
}

func TestRenameTrader(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := setupTest(t)
		position, err := l.Open("A", models.Long, 100, 10)
		require.NoError(t, err)

		require.NoError(t, l.RenameTrader("A", "火箭一号"))

		traders, err := l.Traders()
		require.NoError(t, err)
		assert.Equal(t, "火箭一号", traders[0].Name)

		// Records store the id, not a name copy.
		reloaded, err := l.Position(position.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", reloaded.TraderID)
	})

	t.Run("UnknownTrader", func(t *testing.T) {
		l := setupTest(t)
		assert.ErrorIs(t, l.RenameTrader("Z", "nobody"), ErrNotFound)
	})

	t.Run("EmptyName", func(t *testing.T) {
		l := setupTest(t)
		assert.ErrorIs(t, l.RenameTrader("A", ""), ErrInvalidArgument)
	})
}

func TestRecords_Order(t *testing.T) {
	l := setupTest(t)

	first, err := l.Open("A", models.Long, 100, 10)
	require.NoError(t, err)
	second, err := l.Open("B", models.Short, 50, 4)
	require.NoError(t, err)
	event, err := l.Close(first.ID, 105, 4)
	require.NoError(t, err)

	records, err := l.Records()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Insertion order: open A, open B, close of A.
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, second.ID, records[1].ID)
	assert.Equal(t, event.ID, records[2].ID)

	assert.Equal(t, models.KindOpening, records[0].Kind)
	assert.Equal(t, models.KindCloseEvent, records[2].Kind)
	assert.Equal(t, first.ID, records[2].RelatedID)
	require.NotNil(t, records[2].Profit)
	assert.Equal(t, 20.0, *records[2].Profit)
	assert.Equal(t, 0, records[2].RemainingQuantity)
	assert.Equal(t, models.StatusClosed, records[2].Status)
}
