package entity

import "time"

// ChecklistSummary is the progress snapshot of one checklist without its items
type ChecklistSummary struct {
	ID                 int64     `json:"id"`
	TransactionID      string    `json:"transaction_id"`
	Type               string    `json:"type"`
	TotalItems         int       `json:"total_items"`
	CompletedItems     int       `json:"completed_items"`
	ProgressPercentage int       `json:"progress_percentage"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TypeStats aggregates the checklists of one type
type TypeStats struct {
	Type            string `json:"type"`
	Label           string `json:"label"`
	Count           int    `json:"count"`
	AverageProgress int    `json:"avg_progress"`
	TotalItems      int    `json:"total_items"`
	CompletedItems  int    `json:"completed_items"`
}

// OverallStats aggregates every checklist
type OverallStats struct {
	AverageProgress int `json:"avg_progress"`
	TotalItems      int `json:"total_items"`
	CompletedItems  int `json:"completed_items"`
}

// ChecklistStats is the dashboard view over all checklists
type ChecklistStats struct {
	Total       int          `json:"total"`
	ByType      []TypeStats  `json:"by_type"`
	Overall     OverallStats `json:"overall"`
	GeneratedAt time.Time    `json:"generated_at"`
}
