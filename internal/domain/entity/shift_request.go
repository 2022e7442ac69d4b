package entity

import "time"

// ShiftRequest is the header of one submitted batch of availability entries
type ShiftRequest struct {
	ID          int64                 `json:"id"`
	RequestID   string                `json:"request_id"`
	EmployeeID  string                `json:"employee_id"`
	RequestType string                `json:"request_type"`
	Status      string                `json:"status"`
	Note        string                `json:"note,omitempty"`
	SubmittedAt time.Time             `json:"submitted_at"`
	Details     []*ShiftRequestDetail `json:"details,omitempty"`
}

// ShiftRequestDetail is one availability interval of a shift request
type ShiftRequestDetail struct {
	ID             int64   `json:"id"`
	ShiftRequestID int64   `json:"shift_request_id"`
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Hours          float64 `json:"hours"`
}

// TotalHours sums the hours of every detail
func (r *ShiftRequest) TotalHours() float64 {
	total := 0.0
	for _, d := range r.Details {
		total += d.Hours
	}
	return total
}
