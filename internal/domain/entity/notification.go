package entity

import "time"

// NotificationLog records a notice that was delivered to one or more recipients
type NotificationLog struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	ReferenceID  string    `json:"reference_id"`
	Subject      string    `json:"subject"`
	Content      string    `json:"content"`
	Recipients   []string  `json:"recipients"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

// Notice is a composed message ready for delivery
type Notice struct {
	Type        string
	ReferenceID string
	Subject     string
	Content     string
	Recipients  []string
}
