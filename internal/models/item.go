package models

import "time"

// Item is one registered physical asset. Items are never hard-deleted;
// disposal flips Active to false.
type Item struct {
	ID                int        `json:"id"`
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	Category          string     `json:"category,omitempty"`
	Description       string     `json:"description,omitempty"`
	SerialNumber      string     `json:"serial_number,omitempty"`
	PurchaseDate      *time.Time `json:"purchase_date,omitempty"`
	PurchasePrice     *float64   `json:"purchase_price,omitempty"`
	PhotoURL          string     `json:"photo_url,omitempty"`
	ResponsiblePerson string     `json:"responsible_person,omitempty"`
	Active            bool       `json:"active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ItemSummary is the reduced item shape used in audit reports.
type ItemSummary struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
