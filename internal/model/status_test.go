package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/esportehub/equipment-reservation/internal/errs"
	"github.com/esportehub/equipment-reservation/internal/model"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()
	all := []model.Status{
		model.StatusScheduled, model.StatusPending, model.StatusInProgress, model.StatusReturned,
	}
	allowed := map[[2]model.Status]bool{
		{model.StatusScheduled, model.StatusInProgress}: true,
		{model.StatusPending, model.StatusInProgress}:   true,
		{model.StatusInProgress, model.StatusReturned}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			from, to := from, to
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				t.Parallel()
				err := from.CanTransitionTo(to)
				if allowed[[2]model.Status{from, to}] {
					require.NoError(t, err)
				} else {
					require.ErrorIs(t, err, errs.ErrIllegalTransition)
				}
			})
		}
	}
}

func TestStatus_Active(t *testing.T) {
	t.Parallel()
	require.True(t, model.StatusScheduled.Active())
	require.True(t, model.StatusPending.Active())
	require.True(t, model.StatusInProgress.Active())
	require.False(t, model.StatusReturned.Active())
	require.False(t, model.Status("BOGUS").Active())
	require.True(t, model.StatusReturned.Terminal())
}
