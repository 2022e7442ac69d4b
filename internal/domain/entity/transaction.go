package entity

import "time"

// Transaction is the customer-side record checklists hang off.
// AssigneeID is the messaging id of the responsible agent, if any.
type Transaction struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	AssigneeID   string    `json:"assignee_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName returns the customer name, falling back to the transaction id
func (t *Transaction) DisplayName() string {
	if t == nil {
		return ""
	}
	if t.CustomerName != "" {
		return t.CustomerName
	}
	return t.ID
}
