package reservation

import (
	"math"

	"tandaro-api/internal/pkg/clock"

	"github.com/google/uuid"
)

// VehicleSpec is the slice of vehicle state the factory needs.
type VehicleSpec struct {
	ID                uuid.UUID
	Name              string
	PricePerHourCents int64
}

type PriceCalculator interface {
	CalculatePriceCents(vehicle VehicleSpec, slot TimeSlot) int64
}

// HourlyPriceCalculator prices a booking as price_per_hour * duration_hours.
type HourlyPriceCalculator struct{}

func NewHourlyPriceCalculator() *HourlyPriceCalculator {
	return &HourlyPriceCalculator{}
}

func (pc *HourlyPriceCalculator) CalculatePriceCents(vehicle VehicleSpec, slot TimeSlot) int64 {
	return int64(math.Round(float64(vehicle.PricePerHourCents) * slot.DurationHours()))
}

type Factory struct {
	clock           clock.Clock
	priceCalculator PriceCalculator
}

func NewFactory(clk clock.Clock, priceCalculator PriceCalculator) *Factory {
	return &Factory{
		clock:           clk,
		priceCalculator: priceCalculator,
	}
}

// NewBooking builds a fresh reservation: status pending, payment unpaid,
// total derived from the vehicle's hourly rate. Overlap against the
// vehicle's schedule is the caller's concern (it needs repository state).
func (f *Factory) NewBooking(
	vehicle VehicleSpec,
	customer CustomerSnapshot,
	slot TimeSlot,
	pickupLocation, deliveryLocation string,
	note Note,
) (*Reservation, error) {
	now := f.clock.Now()
	if err := slot.ValidateNotPast(now); err != nil {
		return nil, err
	}

	total, err := NewNonNegativeMoney(f.priceCalculator.CalculatePriceCents(vehicle, slot))
	if err != nil {
		return nil, err
	}

	payment, err := NewPayment(total)
	if err != nil {
		return nil, err
	}

	return &Reservation{
		id:               uuid.New(),
		vehicleID:        vehicle.ID,
		customer:         customer,
		slot:             slot,
		status:           StatusPending,
		payment:          payment,
		pickupLocation:   pickupLocation,
		deliveryLocation: deliveryLocation,
		note:             note,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}
