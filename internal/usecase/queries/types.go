package queries

import (
	"time"

	"github.com/google/uuid"
)

// ReservationView is the full read model of a single reservation, joined
// with the vehicle name for display.
type ReservationView struct {
	ID               uuid.UUID
	VehicleID        uuid.UUID
	VehicleName      string
	CustomerID       uuid.UUID
	CustomerName     string
	CustomerPhone    string
	StartTime        time.Time
	DurationHours    float64
	EndTime          time.Time
	Status           string
	PaymentStatus    string
	TotalPriceCents  int64
	PaidAmountCents  int64
	DriverID         *uuid.UUID
	DriverName       *string
	DriverPhone      *string
	AssignedAt       *time.Time
	PickupLocation   string
	DeliveryLocation string
	Images           []string
	SignatureURL     *string
	Note             *string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReservationListItem is the compact shape used by customer and admin lists.
type ReservationListItem struct {
	ID              uuid.UUID
	VehicleID       uuid.UUID
	VehicleName     string
	CustomerName    string
	StartTime       time.Time
	DurationHours   float64
	EndTime         time.Time
	Status          string
	PaymentStatus   string
	TotalPriceCents int64
	PaidAmountCents int64
	DriverID        *uuid.UUID
	DriverName      *string
	CreatedAt       time.Time
}

// JobListItem is a reservation as seen from the assigned driver's side.
type JobListItem struct {
	ID               uuid.UUID
	VehicleName      string
	CustomerName     string
	CustomerPhone    string
	StartTime        time.Time
	DurationHours    float64
	EndTime          time.Time
	Status           string
	PickupLocation   string
	DeliveryLocation string
	Note             *string
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// BlockedSlot is one busy interval on a vehicle's calendar.
type BlockedSlot struct {
	Start time.Time
	End   time.Time
}

type VehicleView struct {
	ID                uuid.UUID
	Name              string
	Description       string
	PricePerHourCents int64
	CapacityNote      string
	ImageURL          *string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AuthorizedUserView is attached to the request context after JWT validation.
type AuthorizedUserView struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Phone     string
	Role      string
	IsActive  bool
	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCredentialsView carries the password hash for login verification only.
type UserCredentialsView struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
}

type DriverView struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

type DriverApplicationView struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Phone         string
	LicenseNumber string
	Message       string
	Status        string
	DecidedBy     *uuid.UUID
	DecidedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
