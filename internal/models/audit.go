package models

import "time"

// Audit statuses. An audit starts open and is closed exactly once;
// closed is terminal.
const (
	AuditOpen   = "open"
	AuditClosed = "closed"
)

// Audit is one physical-count reconciliation run.
type Audit struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedBy int        `json:"created_by"`
	ClosedBy  *int       `json:"closed_by,omitempty"`
}

// AuditScan records that an item was seen during an audit. At most one
// scan exists per (audit, item) pair; scans are immutable once created.
// LocationID is the location the item was found at, nil when unknown.
type AuditScan struct {
	ID         int       `json:"id"`
	AuditID    int       `json:"audit_id"`
	ItemID     int       `json:"item_id"`
	LocationID *int      `json:"location_id,omitempty"`
	ScannedBy  *int      `json:"scanned_by,omitempty"`
	ScannedAt  time.Time `json:"scanned_at"`
}
