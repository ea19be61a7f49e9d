package errs

import "errors"

// Domain-specific sentinel errors for CQRS usecase layers
var (
	// Vehicle errors
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrVehicleInactive = errors.New("vehicle inactive")

	// Reservation errors
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSlotConflict        = errors.New("time slot already booked")
	ErrDuplicateBooking    = errors.New("duplicate booking")
	ErrInvalidTimeSlot     = errors.New("invalid time slot")
	ErrSlotInPast          = errors.New("time slot starts in the past")

	// Workflow errors
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReservationClosed = errors.New("reservation already closed")

	// Driver errors
	ErrDriverNotFound = errors.New("driver not found")
	ErrNotAssigned    = errors.New("reservation not assigned to driver")

	// Idempotency errors
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyInProgress  = errors.New("idempotency in progress")
	ErrIdempotencyCheckFailed = errors.New("idempotency check failed")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
