package reservation

import (
	"time"

	"github.com/google/uuid"
)

// BookedSlot is the schedule-relevant projection of an existing reservation:
// only non-terminal reservations should ever be passed here.
type BookedSlot struct {
	ReservationID uuid.UUID
	Slot          TimeSlot
}

// FindConflict returns the first booked slot overlapping the candidate, or
// nil if the candidate is free. Pure over its inputs.
func FindConflict(candidate TimeSlot, existing []BookedSlot) *BookedSlot {
	for i := range existing {
		if candidate.Overlaps(existing[i].Slot) {
			return &existing[i]
		}
	}
	return nil
}

// CheckBookable validates a candidate slot against the vehicle's active
// schedule: the start must be in the future and no active reservation may
// overlap. Callers must re-run this inside the booking transaction.
func CheckBookable(now time.Time, candidate TimeSlot, existing []BookedSlot) error {
	if err := candidate.ValidateNotPast(now); err != nil {
		return err
	}
	if conflict := FindConflict(candidate, existing); conflict != nil {
		return ErrSlotConflict
	}
	return nil
}
