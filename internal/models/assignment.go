package models

import "time"

// Assignment is one entry in the append-only relocation log. The current
// location of an item is the assignment with the highest assigned_at
// (ties broken by highest id).
type Assignment struct {
	ID         int       `json:"id"`
	ItemID     int       `json:"item_id"`
	LocationID int       `json:"location_id"`
	UserID     *int      `json:"user_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}
