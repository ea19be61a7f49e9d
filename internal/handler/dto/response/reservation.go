package response

import (
	"time"

	"github.com/google/uuid"

	"tandaro-api/internal/usecase/queries"
)

type ReservationResponse struct {
	ID               uuid.UUID  `json:"id"`
	VehicleID        uuid.UUID  `json:"vehicleId"`
	VehicleName      string     `json:"vehicleName"`
	CustomerID       uuid.UUID  `json:"customerId"`
	CustomerName     string     `json:"customerName"`
	CustomerPhone    string     `json:"customerPhone"`
	StartTime        time.Time  `json:"startTime"`
	DurationHours    float64    `json:"durationHours"`
	EndTime          time.Time  `json:"endTime"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"paymentStatus"`
	TotalPriceCents  int64      `json:"totalPriceCents"`
	PaidAmountCents  int64      `json:"paidAmountCents"`
	DriverID         *uuid.UUID `json:"driverId,omitempty"`
	DriverName       *string    `json:"driverName,omitempty"`
	DriverPhone      *string    `json:"driverPhone,omitempty"`
	AssignedAt       *time.Time `json:"assignedAt,omitempty"`
	PickupLocation   string     `json:"pickupLocation"`
	DeliveryLocation string     `json:"deliveryLocation"`
	Images           []string   `json:"images,omitempty"`
	SignatureURL     *string    `json:"signatureUrl,omitempty"`
	Note             *string    `json:"note,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type ReservationListItemResponse struct {
	ID              uuid.UUID  `json:"id"`
	VehicleID       uuid.UUID  `json:"vehicleId"`
	VehicleName     string     `json:"vehicleName"`
	CustomerName    string     `json:"customerName"`
	StartTime       time.Time  `json:"startTime"`
	DurationHours   float64    `json:"durationHours"`
	EndTime         time.Time  `json:"endTime"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"paymentStatus"`
	TotalPriceCents int64      `json:"totalPriceCents"`
	PaidAmountCents int64      `json:"paidAmountCents"`
	DriverID        *uuid.UUID `json:"driverId,omitempty"`
	DriverName      *string    `json:"driverName,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ReservationPageResponse is a keyset page: nextCursor is absent on the
// last page.
type ReservationPageResponse struct {
	Items      []*ReservationListItemResponse `json:"items"`
	NextCursor *string                        `json:"nextCursor,omitempty"`
}

func FromReservationView(v *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:               v.ID,
		VehicleID:        v.VehicleID,
		VehicleName:      v.VehicleName,
		CustomerID:       v.CustomerID,
		CustomerName:     v.CustomerName,
		CustomerPhone:    v.CustomerPhone,
		StartTime:        v.StartTime,
		DurationHours:    v.DurationHours,
		EndTime:          v.EndTime,
		Status:           v.Status,
		PaymentStatus:    v.PaymentStatus,
		TotalPriceCents:  v.TotalPriceCents,
		PaidAmountCents:  v.PaidAmountCents,
		DriverID:         v.DriverID,
		DriverName:       v.DriverName,
		DriverPhone:      v.DriverPhone,
		AssignedAt:       v.AssignedAt,
		PickupLocation:   v.PickupLocation,
		DeliveryLocation: v.DeliveryLocation,
		Images:           v.Images,
		SignatureURL:     v.SignatureURL,
		Note:             v.Note,
		StartedAt:        v.StartedAt,
		CompletedAt:      v.CompletedAt,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func FromReservationListItem(v *queries.ReservationListItem) *ReservationListItemResponse {
	return &ReservationListItemResponse{
		ID:              v.ID,
		VehicleID:       v.VehicleID,
		VehicleName:     v.VehicleName,
		CustomerName:    v.CustomerName,
		StartTime:       v.StartTime,
		DurationHours:   v.DurationHours,
		EndTime:         v.EndTime,
		Status:          v.Status,
		PaymentStatus:   v.PaymentStatus,
		TotalPriceCents: v.TotalPriceCents,
		PaidAmountCents: v.PaidAmountCents,
		DriverID:        v.DriverID,
		DriverName:      v.DriverName,
		CreatedAt:       v.CreatedAt,
	}
}

func FromReservationListItems(items []*queries.ReservationListItem) []*ReservationListItemResponse {
	out := make([]*ReservationListItemResponse, len(items))
	for i, item := range items {
		out[i] = FromReservationListItem(item)
	}
	return out
}
