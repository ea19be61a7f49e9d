package response

import (
	"time"

	"tandaro-api/internal/usecase/queries"
)

type BlockedSlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type HourCellResponse struct {
	Hour      int       `json:"hour"`
	StartTime time.Time `json:"startTime"`
	Available bool      `json:"available"`
}

type DayAvailabilityResponse struct {
	Date  string             `json:"date"`
	Hours []HourCellResponse `json:"hours"`
}

func FromBlockedSlots(slots []queries.BlockedSlot) []BlockedSlotResponse {
	out := make([]BlockedSlotResponse, len(slots))
	for i, s := range slots {
		out[i] = BlockedSlotResponse{Start: s.Start, End: s.End}
	}
	return out
}

func FromCalendar(days []queries.DayAvailability) []DayAvailabilityResponse {
	out := make([]DayAvailabilityResponse, len(days))
	for i, d := range days {
		hours := make([]HourCellResponse, len(d.Hours))
		for j, h := range d.Hours {
			hours[j] = HourCellResponse{Hour: h.Hour, StartTime: h.StartTime, Available: h.Available}
		}
		out[i] = DayAvailabilityResponse{Date: d.Date, Hours: hours}
	}
	return out
}
