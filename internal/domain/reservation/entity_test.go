//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"tandaro-api/internal/domain/reservation"
	"tandaro-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := builder.NewReservationBuilder()
		actual, err := b.BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, reservation.StatusPending, actual.Status())
		assert.Equal(t, reservation.PaymentUnpaid, actual.Payment().Status())
		assert.Equal(t, b.VehicleID, actual.VehicleID())
		assert.Equal(t, b.CustomerID, actual.Customer().UserID)
		assert.Nil(t, actual.Assignment())
		assert.Nil(t, actual.StartedAt())
		assert.Nil(t, actual.CompletedAt())

		// 4h at 45.00/h
		assert.Equal(t, int64(18000), actual.Payment().Total().Cents())
	})

	t.Run("past start is rejected", func(t *testing.T) {
		_, err := builder.NewReservationBuilder().
			WithStart(builder.BaseTime.Add(-time.Hour)).
			BuildDomain()
		assert.ErrorIs(t, err, reservation.ErrStartInPast)
	})

	t.Run("fractional duration is priced exactly", func(t *testing.T) {
		actual, err := builder.NewReservationBuilder().
			WithDurationHours(2.5).
			WithPricePerHourCents(4000).
			BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, int64(10000), actual.Payment().Total().Cents())
	})
}

func TestStatusTransitions(t *testing.T) {
	now := builder.BaseTime

	advance := func(t *testing.T, r *reservation.Reservation, next reservation.Status, at time.Time) error {
		t.Helper()
		switch next {
		case reservation.StatusConfirmed:
			return r.Confirm(at)
		case reservation.StatusInProgress:
			return r.Start(at)
		case reservation.StatusCompleted:
			return r.Complete(at)
		case reservation.StatusCancelled:
			return r.Cancel(at)
		default:
			t.Fatalf("unexpected target status %s", next)
			return nil
		}
	}

	t.Run("allowed paths", func(t *testing.T) {
		paths := [][]reservation.Status{
			{reservation.StatusConfirmed, reservation.StatusInProgress, reservation.StatusCompleted},
			{reservation.StatusConfirmed, reservation.StatusInProgress, reservation.StatusCancelled},
			{reservation.StatusConfirmed, reservation.StatusCancelled},
			{reservation.StatusInProgress, reservation.StatusCompleted},
			{reservation.StatusCancelled},
		}
		for _, path := range paths {
			r := builder.NewReservationBuilder().MustBuildDomain()
			for _, next := range path {
				require.NoError(t, advance(t, r, next, now), "path %v at %s", path, next)
				assert.Equal(t, next, r.Status())
			}
		}
	})

	t.Run("pending cannot complete directly", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain()
		assert.ErrorIs(t, r.Complete(now), reservation.ErrInvalidTransition)
		assert.Equal(t, reservation.StatusPending, r.Status())
	})

	t.Run("terminal statuses have no exits", func(t *testing.T) {
		all := []reservation.Status{
			reservation.StatusPending,
			reservation.StatusConfirmed,
			reservation.StatusInProgress,
			reservation.StatusCompleted,
			reservation.StatusCancelled,
		}

		for _, terminal := range []reservation.Status{reservation.StatusCompleted, reservation.StatusCancelled} {
			for _, next := range all {
				assert.False(t, terminal.CanTransitionTo(next), "%s -> %s must be blocked", terminal, next)
			}
		}

		r := builder.NewReservationBuilder().MustBuildDomain()
		require.NoError(t, r.Cancel(now))
		assert.ErrorIs(t, r.Confirm(now), reservation.ErrReservationClosed)
		assert.ErrorIs(t, r.Start(now), reservation.ErrReservationClosed)
		assert.ErrorIs(t, r.Complete(now), reservation.ErrReservationClosed)
		assert.ErrorIs(t, r.Cancel(now), reservation.ErrReservationClosed)
	})

	t.Run("start stamps startedAt exactly once", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain()

		firstStart := now.Add(10 * time.Minute)
		require.NoError(t, r.Start(firstStart))
		require.NotNil(t, r.StartedAt())
		assert.Equal(t, firstStart, *r.StartedAt())

		// A second start is an invalid transition and must not touch the stamp.
		assert.Error(t, r.Start(firstStart.Add(time.Hour)))
		assert.Equal(t, firstStart, *r.StartedAt())
	})

	t.Run("complete stamps completedAt", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain()
		require.NoError(t, r.Start(now))

		doneAt := now.Add(3 * time.Hour)
		require.NoError(t, r.Complete(doneAt))
		require.NotNil(t, r.CompletedAt())
		assert.Equal(t, doneAt, *r.CompletedAt())
	})
}

func TestDriverAssignment(t *testing.T) {
	now := builder.BaseTime
	driverID := uuid.New()

	t.Run("assign keeps status pending and stamps assignedAt", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain()

		require.NoError(t, r.AssignDriver(driverID, "+49 160 5554443", now))
		require.NotNil(t, r.Assignment())
		assert.Equal(t, driverID, r.Assignment().DriverID)
		assert.Equal(t, "+49 160 5554443", r.Assignment().Phone)
		assert.Equal(t, now, r.Assignment().AssignedAt)
		assert.Equal(t, reservation.StatusPending, r.Status())
		assert.True(t, r.IsAssignedTo(driverID))
		assert.False(t, r.IsAssignedTo(uuid.New()))
	})

	t.Run("reassignment replaces the previous driver", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain()
		require.NoError(t, r.AssignDriver(driverID, "+49 160 5554443", now))

		other := uuid.New()
		require.NoError(t, r.AssignDriver(other, "+49 152 0001112", now.Add(time.Minute)))
		assert.True(t, r.IsAssignedTo(other))
		assert.False(t, r.IsAssignedTo(driverID))
	})

	t.Run("unassign clears driver and phone", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain()
		require.NoError(t, r.AssignDriver(driverID, "+49 160 5554443", now))
		require.NoError(t, r.UnassignDriver(now))
		assert.Nil(t, r.Assignment())

		assert.ErrorIs(t, r.UnassignDriver(now), reservation.ErrNotAssigned)
	})

	t.Run("terminal reservations cannot be assigned", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain()
		require.NoError(t, r.Cancel(now))
		assert.ErrorIs(t, r.AssignDriver(driverID, "+49 160 5554443", now), reservation.ErrReservationClosed)
	})
}

func TestReservationPaymentEdits(t *testing.T) {
	now := builder.BaseTime

	t.Run("add payment accumulates and clamps", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain() // total 18000
		require.NoError(t, r.AddPayment(reservation.NewMoney(10000), now))
		assert.Equal(t, reservation.PaymentPartial, r.Payment().Status())

		require.NoError(t, r.AddPayment(reservation.NewMoney(10000), now))
		assert.Equal(t, int64(18000), r.Payment().Paid().Cents())
		assert.Equal(t, reservation.PaymentPaid, r.Payment().Status())
	})

	t.Run("mark fully paid", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain()
		r.MarkFullyPaid(now)
		assert.Equal(t, r.Payment().Total().Cents(), r.Payment().Paid().Cents())
		assert.Equal(t, reservation.PaymentPaid, r.Payment().Status())
	})

	t.Run("set amounts rederives status", func(t *testing.T) {
		r := builder.NewReservationBuilder().MustBuildDomain()
		require.NoError(t, r.SetAmounts(reservation.NewMoney(20000), reservation.NewMoney(5000), now))
		assert.Equal(t, int64(20000), r.Payment().Total().Cents())
		assert.Equal(t, reservation.PaymentPartial, r.Payment().Status())
	})
}
