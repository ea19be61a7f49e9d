package queries

import (
	"context"
	"time"

	"tandaro-api/internal/infra"
	"tandaro-api/internal/pkg/clock"
	"tandaro-api/internal/pkg/config"
	"tandaro-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrAvailabilityUnavailable = errs.New("availability could not be determined")

// HourCell is one bookable start hour on a vehicle's day calendar.
type HourCell struct {
	Hour      int
	StartTime time.Time
	Available bool
}

type DayAvailability struct {
	Date  string
	Hours []HourCell
}

type AvailabilityQueries interface {
	// BlockedSlots returns the raw busy intervals of a vehicle in the window.
	BlockedSlots(ctx context.Context, vehicleID uuid.UUID, from, to time.Time) ([]BlockedSlot, error)
	// Calendar expands the window into an hour grid between opening and
	// closing hour, marking each start hour that overlaps a busy interval
	// or has already passed.
	Calendar(ctx context.Context, vehicleID uuid.UUID, from, to time.Time) ([]DayAvailability, error)
}

type BlockedSlotRepo interface {
	BlockedSlots(ctx context.Context, vehicleID uuid.UUID, from, to time.Time) ([]BlockedSlot, error)
}

type VehicleExistsRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*VehicleView, error)
}

type availabilityQueriesImpl struct {
	slots    BlockedSlotRepo
	vehicles VehicleExistsRepo
	cfg      config.BookingConfig
	clock    clock.Clock
}

func NewAvailabilityQueries(slots BlockedSlotRepo, vehicles VehicleExistsRepo, cfg config.BookingConfig, clk clock.Clock) AvailabilityQueries {
	return &availabilityQueriesImpl{slots: slots, vehicles: vehicles, cfg: cfg, clock: clk}
}

// A read failure propagates instead of degrading to an empty list: an
// unknown calendar must never present slots as free.
func (q *availabilityQueriesImpl) BlockedSlots(ctx context.Context, vehicleID uuid.UUID, from, to time.Time) ([]BlockedSlot, error) {
	if _, err := q.vehicles.FindByID(ctx, vehicleID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrVehicleNotFound)
		}
		return nil, errs.Mark(err, ErrAvailabilityUnavailable)
	}

	blocked, err := q.slots.BlockedSlots(ctx, vehicleID, from, to)
	if err != nil {
		return nil, errs.Mark(err, ErrAvailabilityUnavailable)
	}
	return blocked, nil
}

func (q *availabilityQueriesImpl) Calendar(ctx context.Context, vehicleID uuid.UUID, from, to time.Time) ([]DayAvailability, error) {
	blocked, err := q.BlockedSlots(ctx, vehicleID, from, to)
	if err != nil {
		return nil, err
	}
	return BuildHourGrid(from, to, q.clock.Now(), q.cfg.OpeningHour, q.cfg.ClosingHour, blocked), nil
}

// BuildHourGrid marks every opening hour in [from, to) whose one-hour cell
// overlaps a blocked interval or starts at or before now: a slot in the
// past is not bookable, so it must not read as free. Touching endpoints of
// bookings do not block: a booking ending at 14:00 leaves the 14:00 cell
// free. Days are aligned to from's location.
func BuildHourGrid(from, to, now time.Time, openingHour, closingHour int, blocked []BlockedSlot) []DayAvailability {
	var days []DayAvailability

	firstDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for day := firstDay; day.Before(to); day = day.AddDate(0, 0, 1) {
		cells := make([]HourCell, 0, closingHour-openingHour)
		for hour := openingHour; hour < closingHour; hour++ {
			start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, from.Location())
			end := start.Add(time.Hour)

			available := start.After(now)
			if available {
				for _, b := range blocked {
					if start.Before(b.End) && end.After(b.Start) {
						available = false
						break
					}
				}
			}

			cells = append(cells, HourCell{Hour: hour, StartTime: start, Available: available})
		}
		days = append(days, DayAvailability{Date: day.Format("2006-01-02"), Hours: cells})
	}

	return days
}
