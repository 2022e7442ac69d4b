// Package checklist models the milestone checklists attached to seller, buyer
// and reform transactions, and keeps their progress figures derived from the
// item states.
package checklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/pkg/utils"
)

// ItemState is the mutable state of one catalog item inside a checklist
type ItemState struct {
	ID             int64      `json:"id"`
	ChecklistID    int64      `json:"checklist_id"`
	Key            string     `json:"item_key"`
	Label          string     `json:"label"`
	Required       bool       `json:"required"`
	Order          int        `json:"order_index"`
	Checked        bool       `json:"checked"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Note           string     `json:"note,omitempty"`
	AttachmentPath string     `json:"attachment_path,omitempty"`
	UpdatedBy      string     `json:"updated_by,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Progress holds the derived completion figures of a checklist
type Progress struct {
	CompletedItems     int `json:"completed_items"`
	TotalItems         int `json:"total_items"`
	ProgressPercentage int `json:"progress_percentage"`
}

// IsComplete reports whether every item is checked
func (p Progress) IsComplete() bool {
	return p.TotalItems > 0 && p.ProgressPercentage == 100
}

// Checklist tracks the milestones of one transaction for one workflow type.
// TotalItems, CompletedItems and ProgressPercentage are written only by
// RecomputeProgress.
type Checklist struct {
	ID                 int64       `json:"id"`
	TransactionID      string      `json:"transaction_id"`
	Type               Type        `json:"type"`
	Items              []ItemState `json:"items"`
	TotalItems         int         `json:"total_items"`
	CompletedItems     int         `json:"completed_items"`
	ProgressPercentage int         `json:"progress_percentage"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// New builds an unchecked checklist for a transaction from the type's catalog
func New(transactionID string, t Type, now time.Time) (*Checklist, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("transaction id is required: %w", errs.ErrInvalidArgument)
	}

	defs, err := ItemsFor(t)
	if err != nil {
		return nil, err
	}

	items := make([]ItemState, 0, len(defs))
	for _, def := range defs {
		items = append(items, ItemState{
			Key:       def.Key,
			Label:     def.Label,
			Required:  def.Required,
			Order:     def.Order,
			UpdatedAt: now,
		})
	}

	c := &Checklist{
		TransactionID: transactionID,
		Type:          t,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	c.RecomputeProgress()
	return c, nil
}

// RecomputeProgress derives the completion figures from the item states and
// stores them on the checklist. A checklist without items reports 0%.
func (c *Checklist) RecomputeProgress() Progress {
	completed := 0
	for _, item := range c.Items {
		if item.Checked {
			completed++
		}
	}

	p := Progress{
		CompletedItems:     completed,
		TotalItems:         len(c.Items),
		ProgressPercentage: utils.Percent(completed, len(c.Items)),
	}

	c.CompletedItems = p.CompletedItems
	c.TotalItems = p.TotalItems
	c.ProgressPercentage = p.ProgressPercentage
	return p
}

// Progress returns the stored completion figures
func (c *Checklist) Progress() Progress {
	return Progress{
		CompletedItems:     c.CompletedItems,
		TotalItems:         c.TotalItems,
		ProgressPercentage: c.ProgressPercentage,
	}
}

// Item returns the item with the given key
func (c *Checklist) Item(key string) (*ItemState, bool) {
	for i := range c.Items {
		if c.Items[i].Key == key {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// ItemUpdate describes a single user action on an item.
// Nil Note / AttachmentPath leave the stored values untouched.
type ItemUpdate struct {
	Checked        bool
	Note           *string
	AttachmentPath *string
	Actor          string
	At             time.Time
}

// ItemChange is the outcome of SetItemChecked
type ItemChange struct {
	Item     ItemState
	Progress Progress
	// ReachedCompletion is true only on the update that moves the checklist
	// from below 100% to 100%.
	ReachedCompletion bool
}

// SetItemChecked applies an update to one item and recomputes progress.
// CompletedAt is set on an unchecked→checked transition and cleared on
// checked→unchecked; re-applying the same checked value keeps it as is.
func (c *Checklist) SetItemChecked(key string, upd ItemUpdate) (ItemChange, error) {
	item, ok := c.Item(key)
	if !ok {
		return ItemChange{}, fmt.Errorf("checklist item %q: %w", key, errs.ErrNotFound)
	}

	// Stored figures may have drifted from the item rows
	before := c.RecomputeProgress().ProgressPercentage

	switch {
	case upd.Checked && !item.Checked:
		at := upd.At
		item.CompletedAt = &at
	case !upd.Checked && item.Checked:
		item.CompletedAt = nil
	}
	item.Checked = upd.Checked

	if upd.Note != nil {
		item.Note = utils.SanitizeString(*upd.Note)
	}
	if upd.AttachmentPath != nil {
		item.AttachmentPath = *upd.AttachmentPath
	}
	item.UpdatedBy = upd.Actor
	item.UpdatedAt = upd.At
	c.UpdatedAt = upd.At

	p := c.RecomputeProgress()

	return ItemChange{
		Item:              *item,
		Progress:          p,
		ReachedCompletion: before < 100 && p.IsComplete(),
	}, nil
}

// Clone returns a deep copy, so a caller can mutate it and discard the copy
// if persisting the result fails.
func (c *Checklist) Clone() *Checklist {
	cp := *c
	cp.Items = make([]ItemState, len(c.Items))
	for i, item := range c.Items {
		if item.CompletedAt != nil {
			t := *item.CompletedAt
			item.CompletedAt = &t
		}
		cp.Items[i] = item
	}
	return &cp
}
