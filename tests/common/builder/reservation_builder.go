//go:build unit || e2e

package builder

import (
	"time"

	"tandaro-api/internal/domain/reservation"
	"tandaro-api/internal/pkg/clock"

	"github.com/google/uuid"
)

// BaseTime is the reference "now" shared by unit tests that need a frozen clock.
var BaseTime = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type ReservationBuilder struct {
	VehicleID         uuid.UUID
	VehicleName       string
	PricePerHourCents int64
	CustomerID        uuid.UUID
	CustomerName      string
	CustomerPhone     string
	Start             time.Time
	DurationHours     float64
	PickupLocation    string
	DeliveryLocation  string
	Note              string
	Now               time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		VehicleID:         uuid.New(),
		VehicleName:       "Sprinter L2",
		PricePerHourCents: 4500,
		CustomerID:        uuid.New(),
		CustomerName:      "Max Mustermann",
		CustomerPhone:     "+49 170 1234567",
		Start:             BaseTime.Add(25 * time.Hour), // next day 10:00
		DurationHours:     4,
		PickupLocation:    "Hauptstr. 1, Berlin",
		DeliveryLocation:  "Ringstr. 9, Potsdam",
		Note:              "",
		Now:               BaseTime,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) WithStart(start time.Time) *ReservationBuilder {
	b.Start = start
	return b
}

func (b *ReservationBuilder) WithDurationHours(hours float64) *ReservationBuilder {
	b.DurationHours = hours
	return b
}

func (b *ReservationBuilder) WithPricePerHourCents(cents int64) *ReservationBuilder {
	b.PricePerHourCents = cents
	return b
}

func (b *ReservationBuilder) BuildSlot() (reservation.TimeSlot, error) {
	return reservation.NewTimeSlot(b.Start, b.DurationHours)
}

func (b *ReservationBuilder) BuildDomain() (*reservation.Reservation, error) {
	slot, err := b.BuildSlot()
	if err != nil {
		return nil, err
	}

	factory := reservation.NewFactory(clock.NewMockClock(b.Now), reservation.NewHourlyPriceCalculator())
	return factory.NewBooking(
		reservation.VehicleSpec{
			ID:                b.VehicleID,
			Name:              b.VehicleName,
			PricePerHourCents: b.PricePerHourCents,
		},
		reservation.CustomerSnapshot{
			UserID: b.CustomerID,
			Name:   b.CustomerName,
			Phone:  b.CustomerPhone,
		},
		slot,
		b.PickupLocation,
		b.DeliveryLocation,
		reservation.NewNote(b.Note),
	)
}

// MustBuildDomain panics on error; for tests whose inputs are known-valid.
func (b *ReservationBuilder) MustBuildDomain() *reservation.Reservation {
	res, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return res
}
