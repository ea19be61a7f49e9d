package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus        = errors.New("invalid reservation status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrSlotConflict         = errors.New("time slot already booked")
	ErrAlreadyAssigned      = errors.New("driver already assigned")
	ErrNotAssigned          = errors.New("no driver assigned")
	ErrReservationClosed    = errors.New("reservation is in a terminal status")
)

// CustomerSnapshot captures the booking customer at creation time. It is a
// copy, not a live reference: later changes to the user do not propagate.
type CustomerSnapshot struct {
	UserID uuid.UUID
	Name   string
	Phone  string
}

// DriverAssignment carries the assigned driver plus the denormalized phone
// shown to customers and the explicit assignment timestamp used by the
// notification path.
type DriverAssignment struct {
	DriverID   uuid.UUID
	Phone      string
	AssignedAt time.Time
}

type Reservation struct {
	id               uuid.UUID
	vehicleID        uuid.UUID
	customer         CustomerSnapshot
	slot             TimeSlot
	status           Status
	payment          Payment
	assignment       *DriverAssignment
	pickupLocation   string
	deliveryLocation string
	images           []string
	signatureURL     *string
	note             Note
	startedAt        *time.Time
	completedAt      *time.Time
	createdAt        time.Time
	updatedAt        time.Time
}

func ReconstructReservation(
	id, vehicleID uuid.UUID,
	customer CustomerSnapshot,
	slot TimeSlot,
	status Status,
	payment Payment,
	assignment *DriverAssignment,
	pickupLocation, deliveryLocation string,
	images []string,
	signatureURL *string,
	note Note,
	startedAt, completedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:               id,
		vehicleID:        vehicleID,
		customer:         customer,
		slot:             slot,
		status:           status,
		payment:          payment,
		assignment:       assignment,
		pickupLocation:   pickupLocation,
		deliveryLocation: deliveryLocation,
		images:           images,
		signatureURL:     signatureURL,
		note:             note,
		startedAt:        startedAt,
		completedAt:      completedAt,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (r *Reservation) IsActive() bool {
	return !r.status.IsTerminal()
}

// transitionTo is the single gate for status changes.
func (r *Reservation) transitionTo(next Status, now time.Time) error {
	if r.status.IsTerminal() {
		return ErrReservationClosed
	}
	if !r.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.status = next
	r.updatedAt = now
	return nil
}

func (r *Reservation) Confirm(now time.Time) error {
	return r.transitionTo(StatusConfirmed, now)
}

// Start moves the job to in_progress and stamps startedAt exactly once;
// a repeated entry keeps the original timestamp.
func (r *Reservation) Start(now time.Time) error {
	if err := r.transitionTo(StatusInProgress, now); err != nil {
		return err
	}
	if r.startedAt == nil {
		startedAt := now
		r.startedAt = &startedAt
	}
	return nil
}

func (r *Reservation) Complete(now time.Time) error {
	if err := r.transitionTo(StatusCompleted, now); err != nil {
		return err
	}
	completedAt := now
	r.completedAt = &completedAt
	return nil
}

func (r *Reservation) Cancel(now time.Time) error {
	return r.transitionTo(StatusCancelled, now)
}

// AssignDriver does not change the status: a freshly assigned reservation
// stays pending until the driver or an admin starts it.
func (r *Reservation) AssignDriver(driverID uuid.UUID, phone string, now time.Time) error {
	if r.status.IsTerminal() {
		return ErrReservationClosed
	}
	r.assignment = &DriverAssignment{
		DriverID:   driverID,
		Phone:      phone,
		AssignedAt: now,
	}
	r.updatedAt = now
	return nil
}

func (r *Reservation) UnassignDriver(now time.Time) error {
	if r.assignment == nil {
		return ErrNotAssigned
	}
	r.assignment = nil
	r.updatedAt = now
	return nil
}

func (r *Reservation) IsAssignedTo(driverID uuid.UUID) bool {
	return r.assignment != nil && r.assignment.DriverID == driverID
}

func (r *Reservation) SetAmounts(total, paid Money, now time.Time) error {
	payment, err := r.payment.WithAmounts(total, paid)
	if err != nil {
		return err
	}
	r.payment = payment
	r.updatedAt = now
	return nil
}

func (r *Reservation) AddPayment(amount Money, now time.Time) error {
	payment, err := r.payment.Apply(amount)
	if err != nil {
		return err
	}
	r.payment = payment
	r.updatedAt = now
	return nil
}

func (r *Reservation) MarkFullyPaid(now time.Time) {
	r.payment = r.payment.MarkFullyPaid()
	r.updatedAt = now
}

// AttachArtifacts stores job-completion artifacts; passthrough fields with
// no workflow semantics.
func (r *Reservation) AttachArtifacts(images []string, signatureURL *string, note Note, now time.Time) {
	if images != nil {
		r.images = images
	}
	if signatureURL != nil {
		r.signatureURL = signatureURL
	}
	if !note.IsEmpty() {
		r.note = note
	}
	r.updatedAt = now
}

func (r *Reservation) ID() uuid.UUID                 { return r.id }
func (r *Reservation) VehicleID() uuid.UUID          { return r.vehicleID }
func (r *Reservation) Customer() CustomerSnapshot    { return r.customer }
func (r *Reservation) Slot() TimeSlot                { return r.slot }
func (r *Reservation) Status() Status                { return r.status }
func (r *Reservation) Payment() Payment              { return r.payment }
func (r *Reservation) Assignment() *DriverAssignment { return r.assignment }
func (r *Reservation) PickupLocation() string        { return r.pickupLocation }
func (r *Reservation) DeliveryLocation() string      { return r.deliveryLocation }
func (r *Reservation) Images() []string              { return r.images }
func (r *Reservation) SignatureURL() *string         { return r.signatureURL }
func (r *Reservation) Note() Note                    { return r.note }
func (r *Reservation) StartedAt() *time.Time         { return r.startedAt }
func (r *Reservation) CompletedAt() *time.Time       { return r.completedAt }
func (r *Reservation) CreatedAt() time.Time          { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time          { return r.updatedAt }
