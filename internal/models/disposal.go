package models

import "time"

// Disposal reasons.
const (
	ReasonLiquidation = "liquidation"
	ReasonSale        = "sale"
	ReasonDonation    = "donation"
	ReasonTheft       = "theft"
	ReasonLoss        = "loss"
	ReasonTransfer    = "transfer"
)

// ValidDisposalReason reports whether reason is one of the known values.
func ValidDisposalReason(reason string) bool {
	switch reason {
	case ReasonLiquidation, ReasonSale, ReasonDonation, ReasonTheft, ReasonLoss, ReasonTransfer:
		return true
	}
	return false
}

// Disposal is an append-only record of an item leaving the inventory
// permanently. Creating one deactivates the item.
type Disposal struct {
	ID          int       `json:"id"`
	ItemID      int       `json:"item_id"`
	Reason      string    `json:"reason"`
	DisposedAt  time.Time `json:"disposed_at"`
	DisposedBy  *int      `json:"disposed_by,omitempty"`
	Note        string    `json:"note,omitempty"`
	DocumentRef string    `json:"document_ref,omitempty"`

	// Denormalized for listings.
	ItemCode string `json:"item_code,omitempty"`
	ItemName string `json:"item_name,omitempty"`
}
