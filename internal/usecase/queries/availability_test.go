//go:build unit

package queries_test

import (
	"testing"
	"time"

	"tandaro-api/internal/usecase/queries"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHourGrid(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	// The window lies entirely in the future relative to now, so only
	// blocked intervals decide availability.
	now := day.AddDate(0, 0, -1)

	blockedAt := func(hour, durationHours int) queries.BlockedSlot {
		start := day.Add(time.Duration(hour) * time.Hour)
		return queries.BlockedSlot{Start: start, End: start.Add(time.Duration(durationHours) * time.Hour)}
	}

	t.Run("one cell per opening hour", func(t *testing.T) {
		days := queries.BuildHourGrid(day, day.AddDate(0, 0, 1), now, 8, 20, nil)

		want := queries.DayAvailability{Date: "2025-06-02"}
		for h := 8; h < 20; h++ {
			want.Hours = append(want.Hours, queries.HourCell{
				Hour:      h,
				StartTime: day.Add(time.Duration(h) * time.Hour),
				Available: true,
			})
		}

		require.Len(t, days, 1)
		if diff := cmp.Diff(want, days[0]); diff != "" {
			t.Errorf("grid mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("blocked interval marks the overlapped cells", func(t *testing.T) {
		days := queries.BuildHourGrid(day, day.AddDate(0, 0, 1), now, 8, 20, []queries.BlockedSlot{blockedAt(10, 2)})

		require.Len(t, days, 1)
		for _, cell := range days[0].Hours {
			blocked := cell.Hour == 10 || cell.Hour == 11
			assert.Equal(t, !blocked, cell.Available, "hour %d", cell.Hour)
		}
	})

	t.Run("touching endpoints do not block", func(t *testing.T) {
		// A booking from 10:00 to 12:00 leaves both the 09:00 and the
		// 12:00 cell free.
		days := queries.BuildHourGrid(day, day.AddDate(0, 0, 1), now, 8, 20, []queries.BlockedSlot{blockedAt(10, 2)})

		cells := days[0].Hours
		assert.True(t, cells[1].Available, "09:00 cell")
		assert.True(t, cells[4].Available, "12:00 cell")
	})

	t.Run("partial-hour overlap blocks the whole cell", func(t *testing.T) {
		start := day.Add(10*time.Hour + 30*time.Minute)
		blocked := []queries.BlockedSlot{{Start: start, End: start.Add(time.Hour)}}

		days := queries.BuildHourGrid(day, day.AddDate(0, 0, 1), now, 8, 20, blocked)

		for _, cell := range days[0].Hours {
			wantBlocked := cell.Hour == 10 || cell.Hour == 11
			assert.Equal(t, !wantBlocked, cell.Available, "hour %d", cell.Hour)
		}
	})

	t.Run("hours at or before now are not available", func(t *testing.T) {
		// At 14:00 the morning hours are gone and the 14:00 cell itself
		// starts now, so the first bookable start is 15:00.
		days := queries.BuildHourGrid(day, day.AddDate(0, 0, 1), day.Add(14*time.Hour), 8, 20, nil)

		require.Len(t, days, 1)
		for _, cell := range days[0].Hours {
			assert.Equal(t, cell.Hour >= 15, cell.Available, "hour %d", cell.Hour)
		}
	})

	t.Run("days align to the location of from", func(t *testing.T) {
		berlin, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)
		from := time.Date(2025, 6, 2, 0, 0, 0, 0, berlin)

		days := queries.BuildHourGrid(from, from.AddDate(0, 0, 1), from.AddDate(0, 0, -1), 8, 20, nil)

		require.Len(t, days, 1)
		assert.Equal(t, "2025-06-02", days[0].Date)
		first := days[0].Hours[0].StartTime
		assert.Equal(t, time.Date(2025, 6, 2, 8, 0, 0, 0, berlin).Unix(), first.Unix())
	})

	t.Run("spans multiple days", func(t *testing.T) {
		days := queries.BuildHourGrid(day, day.AddDate(0, 0, 3), now, 8, 20, nil)

		require.Len(t, days, 3)
		assert.Equal(t, "2025-06-02", days[0].Date)
		assert.Equal(t, "2025-06-04", days[2].Date)
	})

	t.Run("empty window yields no days", func(t *testing.T) {
		days := queries.BuildHourGrid(day, day, now, 8, 20, nil)
		assert.Empty(t, days)
	})
}
