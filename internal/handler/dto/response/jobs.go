package response

import (
	"time"

	"github.com/google/uuid"

	"tandaro-api/internal/usecase/queries"
)

type JobResponse struct {
	ID               uuid.UUID  `json:"id"`
	VehicleName      string     `json:"vehicleName"`
	CustomerName     string     `json:"customerName"`
	CustomerPhone    string     `json:"customerPhone"`
	StartTime        time.Time  `json:"startTime"`
	DurationHours    float64    `json:"durationHours"`
	EndTime          time.Time  `json:"endTime"`
	Status           string     `json:"status"`
	PickupLocation   string     `json:"pickupLocation"`
	DeliveryLocation string     `json:"deliveryLocation"`
	Note             *string    `json:"note,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

type JobBucketsResponse struct {
	Today     []*JobResponse `json:"today"`
	Upcoming  []*JobResponse `json:"upcoming"`
	Completed []*JobResponse `json:"completed"`
}

func FromJobBuckets(buckets *queries.JobBuckets) *JobBucketsResponse {
	return &JobBucketsResponse{
		Today:     fromJobItems(buckets.Today),
		Upcoming:  fromJobItems(buckets.Upcoming),
		Completed: fromJobItems(buckets.Completed),
	}
}

func fromJobItems(items []*queries.JobListItem) []*JobResponse {
	out := make([]*JobResponse, len(items))
	for i, item := range items {
		out[i] = &JobResponse{
			ID:               item.ID,
			VehicleName:      item.VehicleName,
			CustomerName:     item.CustomerName,
			CustomerPhone:    item.CustomerPhone,
			StartTime:        item.StartTime,
			DurationHours:    item.DurationHours,
			EndTime:          item.EndTime,
			Status:           item.Status,
			PickupLocation:   item.PickupLocation,
			DeliveryLocation: item.DeliveryLocation,
			Note:             item.Note,
			StartedAt:        item.StartedAt,
			CompletedAt:      item.CompletedAt,
		}
	}
	return out
}
