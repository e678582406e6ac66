package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/esportehub/equipment-reservation/internal/errs"
	"github.com/esportehub/equipment-reservation/internal/model"
)

func TestNewPeriod(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		withdrawalAt time.Time
		returnAt     time.Time
		wantErr      bool
	}{
		{
			name:         "ok",
			withdrawalAt: now.Add(time.Hour),
			returnAt:     now.Add(2 * time.Hour),
		},
		{
			name:         "ok. starts exactly now",
			withdrawalAt: now,
			returnAt:     now.Add(time.Hour),
		},
		{
			name:         "ok. zero-length window",
			withdrawalAt: now.Add(time.Hour),
			returnAt:     now.Add(time.Hour),
		},
		{
			name:         "ok. exactly 48h",
			withdrawalAt: now.Add(time.Hour),
			returnAt:     now.Add(time.Hour + model.MaxPeriodDuration),
		},
		{
			name:         "err. withdrawal in the past",
			withdrawalAt: now.Add(-time.Second),
			returnAt:     now.Add(time.Hour),
			wantErr:      true,
		},
		{
			name:         "err. return precedes withdrawal",
			withdrawalAt: now.Add(2 * time.Hour),
			returnAt:     now.Add(time.Hour),
			wantErr:      true,
		},
		{
			name:         "err. longer than 48h",
			withdrawalAt: now.Add(time.Hour),
			returnAt:     now.Add(49 * time.Hour),
			wantErr:      true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := model.NewPeriod(tt.withdrawalAt, tt.returnAt, now)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrInvalidPeriod)
				require.Zero(t, p)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.withdrawalAt, p.WithdrawalAt)
			require.Equal(t, tt.returnAt, p.ReturnAt)
		})
	}
}

func TestPeriod_Overlaps(t *testing.T) {
	t.Parallel()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }
	window := func(s, e time.Time) model.Period { return model.Period{WithdrawalAt: s, ReturnAt: e} }

	a := window(at(10, 0), at(12, 0))

	require.False(t, a.Overlaps(window(at(12, 0), at(13, 0))), "back-to-back windows must not overlap")
	require.False(t, window(at(12, 0), at(13, 0)).Overlaps(a))
	require.True(t, a.Overlaps(window(at(11, 59), at(13, 0))))
	require.True(t, a.Overlaps(window(at(9, 0), at(10, 1))))
	require.True(t, a.Overlaps(window(at(10, 30), at(11, 0))), "contained window overlaps")
	require.True(t, a.Overlaps(window(at(9, 0), at(14, 0))), "containing window overlaps")
	require.False(t, a.Overlaps(window(at(8, 0), at(10, 0))))
}
