package model

import "time"

// Section is a hierarchical grouping node for items. A nil ParentID marks a
// top-level section within its organization.
type Section struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	ParentID       *int64    `json:"parent_id,omitempty"`
	OrganizationID int64     `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`

	// ItemCount is the number of direct items, populated by subsection listings.
	ItemCount int `json:"item_count,omitempty"`
}
