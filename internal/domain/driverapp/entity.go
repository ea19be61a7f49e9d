package driverapp

import (
	"errors"
	"strings"
	"time"

	"tandaro-api/internal/domain/user"

	"github.com/google/uuid"
)

var (
	ErrInvalidLicense  = errors.New("license number must not be empty")
	ErrAlreadyDecided  = errors.New("application already decided")
	ErrInvalidAppState = errors.New("invalid application status")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidAppState
	}
	return status, nil
}

// Application is a request to work as a driver. Approval promotes the
// applicant's user account to the driver role.
type Application struct {
	id            uuid.UUID
	name          user.Name
	email         user.Email
	phone         user.Phone
	licenseNumber string
	message       string
	status        Status
	decidedBy     *uuid.UUID
	decidedAt     *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewApplication(name user.Name, email user.Email, phone user.Phone, licenseNumber, message string) (*Application, error) {
	licenseNumber = strings.TrimSpace(licenseNumber)
	if licenseNumber == "" {
		return nil, ErrInvalidLicense
	}
	return &Application{
		id:            uuid.New(),
		name:          name,
		email:         email,
		phone:         phone,
		licenseNumber: licenseNumber,
		message:       message,
		status:        StatusPending,
	}, nil
}

func ReconstructApplication(
	id uuid.UUID,
	name user.Name,
	email user.Email,
	phone user.Phone,
	licenseNumber, message string,
	status Status,
	decidedBy *uuid.UUID,
	decidedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Application {
	return &Application{
		id:            id,
		name:          name,
		email:         email,
		phone:         phone,
		licenseNumber: licenseNumber,
		message:       message,
		status:        status,
		decidedBy:     decidedBy,
		decidedAt:     decidedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (a *Application) decide(status Status, adminID uuid.UUID, now time.Time) error {
	if a.status != StatusPending {
		return ErrAlreadyDecided
	}
	a.status = status
	a.decidedBy = &adminID
	a.decidedAt = &now
	a.updatedAt = now
	return nil
}

func (a *Application) Approve(adminID uuid.UUID, now time.Time) error {
	return a.decide(StatusApproved, adminID, now)
}

func (a *Application) Reject(adminID uuid.UUID, now time.Time) error {
	return a.decide(StatusRejected, adminID, now)
}

func (a *Application) IsPending() bool { return a.status == StatusPending }

func (a *Application) ID() uuid.UUID         { return a.id }
func (a *Application) Name() user.Name       { return a.name }
func (a *Application) Email() user.Email     { return a.email }
func (a *Application) Phone() user.Phone     { return a.phone }
func (a *Application) LicenseNumber() string { return a.licenseNumber }
func (a *Application) Message() string       { return a.message }
func (a *Application) Status() Status        { return a.status }
func (a *Application) DecidedBy() *uuid.UUID { return a.decidedBy }
func (a *Application) DecidedAt() *time.Time { return a.decidedAt }
func (a *Application) CreatedAt() time.Time  { return a.createdAt }
func (a *Application) UpdatedAt() time.Time  { return a.updatedAt }
