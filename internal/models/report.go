package models

// ScanDetail pairs a scan with the outcome of move detection: WasMoved is
// true when the item's last assignment before the audit started points to
// a different location than the scan recorded.
type ScanDetail struct {
	Scan             AuditScan `json:"scan"`
	WasMoved         bool      `json:"was_moved"`
	FromLocationName string    `json:"from_location_name,omitempty"`
}

// Report is the reconciliation result for one audit. It is the single
// source for every presentation of the report (JSON, spreadsheet, CLI);
// adapters must not re-derive the counts.
type Report struct {
	Audit        Audit         `json:"audit"`
	ScannedCount int           `json:"scanned_count"`
	TotalItems   int           `json:"total_items"`
	MissingCount int           `json:"missing_count"`
	MovedCount   int           `json:"moved_count"`
	MissingItems []ItemSummary `json:"missing_items"`
	Scans        []AuditScan   `json:"scans"`
	ScanDetails  []ScanDetail  `json:"scan_details"`
}
