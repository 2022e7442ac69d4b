package entity

// Notification type constants
const (
	NotificationTypeChecklistCompletion = "checklist_completion"
	NotificationTypeIncompleteReminder  = "incomplete_reminder"
	NotificationTypeDeadlineAlert       = "deadline_alert"
)

// Notification status constants
const (
	NotificationStatusSent   = "SENT"
	NotificationStatusFailed = "FAILED"
)

// Shift request constants
const (
	ShiftRequestTypeAvailability = "availability"

	ShiftRequestStatusPending  = "pending"
	ShiftRequestStatusApproved = "approved"
	ShiftRequestStatusRejected = "rejected"
)
