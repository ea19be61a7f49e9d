package request

import (
	"github.com/google/uuid"
)

type AssignDriverRequest struct {
	DriverID uuid.UUID `json:"driver_id" binding:"required"`
}

type BulkAssignRequest struct {
	DriverID       uuid.UUID   `json:"driver_id" binding:"required"`
	ReservationIDs []uuid.UUID `json:"reservation_ids" binding:"required,min=1"`
}

type SetAmountsRequest struct {
	TotalPriceCents int64 `json:"total_price_cents" binding:"gte=0"`
	PaidAmountCents int64 `json:"paid_amount_cents" binding:"gte=0"`
}

type RecordPaymentRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}
