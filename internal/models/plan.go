package models

import "time"

// Section is one titled block of a business plan.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// StructuredPlan is the decoded form of a saved business plan.
//
// Plans saved by older clients were plain strings; those decode with
// Content set and Sections empty. Plans saved by current clients carry
// an ordered section list and leave Content empty.
type StructuredPlan struct {
	BusinessType string    `json:"businessType"`
	Location     string    `json:"location"`
	DateCreated  string    `json:"dateCreated"`
	Sections     []Section `json:"sections,omitempty"`
	Content      string    `json:"content,omitempty"`
}

// SavedPlan is one persisted plan entry. ID is stable across the life
// of the row; the positional index clients send is resolved against
// insertion order at request time.
type SavedPlan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Content   string    `json:"-"` // raw serialized blob
	CreatedAt time.Time `json:"createdAt"`
}

// PlanEntry pairs a stored plan's stable identifier with its decoded
// form, in insertion order.
type PlanEntry struct {
	ID        string         `json:"id"`
	Plan      StructuredPlan `json:"plan"`
	CreatedAt time.Time      `json:"createdAt"`
}
