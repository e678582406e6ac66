package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/esportehub/equipment-reservation/internal/errs"
	"github.com/esportehub/equipment-reservation/internal/model"
)

var ledgerDay = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return ledgerDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func window(s, e time.Time) model.Period {
	return model.Period{WithdrawalAt: s, ReturnAt: e}
}

func TestAvailableUnits(t *testing.T) {
	t.Parallel()
	eq := model.Equipment{ID: 1, Name: "volleyball", TotalUnits: 4}

	t.Run("aggregate ignores time windows", func(t *testing.T) {
		t.Parallel()
		active := []model.Reservation{
			{ID: 10, EquipmentID: 1, Amount: 3, Status: model.StatusScheduled,
				Period: window(at(10, 0), at(12, 0))},
		}
		require.Equal(t, 1, AvailableUnits(eq, active))
	})

	t.Run("returned reservations free units", func(t *testing.T) {
		t.Parallel()
		active := []model.Reservation{
			{ID: 10, EquipmentID: 1, Amount: 3, Status: model.StatusReturned,
				Period: window(at(10, 0), at(12, 0))},
			{ID: 11, EquipmentID: 1, Amount: 1, Status: model.StatusInProgress,
				Period: window(at(14, 0), at(16, 0))},
		}
		require.Equal(t, 3, AvailableUnits(eq, active))
	})

	t.Run("never negative", func(t *testing.T) {
		t.Parallel()
		active := []model.Reservation{
			{ID: 10, EquipmentID: 1, Amount: 3, Status: model.StatusScheduled},
			{ID: 11, EquipmentID: 1, Amount: 3, Status: model.StatusPending},
		}
		require.Equal(t, 0, AvailableUnits(eq, active))
	})

	t.Run("other equipment does not count", func(t *testing.T) {
		t.Parallel()
		active := []model.Reservation{
			{ID: 10, EquipmentID: 2, Amount: 4, Status: model.StatusScheduled},
		}
		require.Equal(t, 4, AvailableUnits(eq, active))
	})
}

func TestCheckOverlapCapacity(t *testing.T) {
	t.Parallel()
	one := model.Equipment{ID: 1, Name: "net", TotalUnits: 1}
	four := model.Equipment{ID: 1, Name: "ball", TotalUnits: 4}

	existing := []model.Reservation{
		{ID: 10, EquipmentID: 1, Amount: 1, Status: model.StatusScheduled,
			Period: window(at(10, 0), at(12, 0))},
	}

	t.Run("back-to-back window is accepted", func(t *testing.T) {
		t.Parallel()
		err := CheckOverlapCapacity(one, window(at(12, 0), at(13, 0)), 1, 0, existing)
		require.NoError(t, err)
	})

	t.Run("one minute of overlap is rejected", func(t *testing.T) {
		t.Parallel()
		err := CheckOverlapCapacity(one, window(at(11, 59), at(13, 0)), 1, 0, existing)
		require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	})

	t.Run("windowed check is stricter than the aggregate view", func(t *testing.T) {
		t.Parallel()
		active := []model.Reservation{
			{ID: 10, EquipmentID: 1, Amount: 3, Status: model.StatusScheduled,
				Period: window(at(10, 0), at(12, 0))},
		}
		// Aggregate says 1 unit left; a 2-unit candidate in the same window
		// must still be rejected.
		require.Equal(t, 1, AvailableUnits(four, active))
		err := CheckOverlapCapacity(four, window(at(10, 0), at(12, 0)), 2, 0, active)
		require.ErrorIs(t, err, errs.ErrCapacityExceeded)

		// Same candidate in a disjoint window fits.
		require.NoError(t, CheckOverlapCapacity(four, window(at(13, 0), at(15, 0)), 2, 0, active))
	})

	t.Run("excluded reservation does not count against itself", func(t *testing.T) {
		t.Parallel()
		err := CheckOverlapCapacity(one, window(at(10, 0), at(12, 0)), 1, 10, existing)
		require.NoError(t, err)
	})

	t.Run("returned reservations do not block", func(t *testing.T) {
		t.Parallel()
		returned := []model.Reservation{
			{ID: 10, EquipmentID: 1, Amount: 1, Status: model.StatusReturned,
				Period: window(at(10, 0), at(12, 0))},
		}
		err := CheckOverlapCapacity(one, window(at(10, 0), at(12, 0)), 1, 0, returned)
		require.NoError(t, err)
	})

	t.Run("amounts accumulate across overlapping reservations", func(t *testing.T) {
		t.Parallel()
		active := []model.Reservation{
			{ID: 10, EquipmentID: 1, Amount: 2, Status: model.StatusScheduled,
				Period: window(at(10, 0), at(12, 0))},
			{ID: 11, EquipmentID: 1, Amount: 1, Status: model.StatusInProgress,
				Period: window(at(11, 0), at(13, 0))},
		}
		require.ErrorIs(t,
			CheckOverlapCapacity(four, window(at(11, 30), at(12, 30)), 2, 0, active),
			errs.ErrCapacityExceeded)
		require.NoError(t,
			CheckOverlapCapacity(four, window(at(11, 30), at(12, 30)), 1, 0, active))
	})
}
