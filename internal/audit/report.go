package audit

import (
	"context"

	"github.com/assettrack/assettrack/internal/models"
)

// Report computes the reconciliation report for an audit of any status.
// It is a pure read; every presentation of the report (JSON, spreadsheet,
// CLI table) consumes this structure rather than re-deriving the numbers.
//
// total_items counts currently-active items at report time, not at audit
// start: an item deactivated mid-audit leaves the denominator, an item
// created mid-audit counts as expected-but-unscanned. That is a stated
// design choice, not a race.
func (e *Engine) Report(ctx context.Context, auditID int) (models.Report, error) {
	audit, err := e.Audits.Get(ctx, auditID)
	if err != nil {
		return models.Report{}, err
	}

	scans, err := e.Audits.Scans(ctx, auditID)
	if err != nil {
		return models.Report{}, err
	}

	activeItems, err := e.Items.ActiveSummaries(ctx)
	if err != nil {
		return models.Report{}, err
	}

	scanned := make(map[int]bool, len(scans))
	itemIDs := make([]int, 0, len(scans))
	for _, s := range scans {
		scanned[s.ItemID] = true
		itemIDs = append(itemIDs, s.ItemID)
	}

	missing := make([]models.ItemSummary, 0)
	for _, item := range activeItems {
		if !scanned[item.ID] {
			missing = append(missing, item)
		}
	}

	// Move detection compares each scan's location with the item's last
	// assignment strictly before the audit started. A difference means the
	// item was not where the books said, whether the auto-relocation in
	// Scan corrected it or the move predated the audit.
	prior, err := e.Log.LocationsBefore(ctx, itemIDs, audit.StartedAt)
	if err != nil {
		return models.Report{}, err
	}

	details := make([]models.ScanDetail, 0, len(scans))
	movedCount := 0
	for _, s := range scans {
		detail := models.ScanDetail{Scan: s}
		if p, ok := prior[s.ItemID]; ok && s.LocationID != nil && p.LocationID != *s.LocationID {
			detail.WasMoved = true
			detail.FromLocationName = p.LocationName
			movedCount++
		}
		details = append(details, detail)
	}

	return models.Report{
		Audit:        audit,
		ScannedCount: len(scans),
		TotalItems:   len(activeItems),
		MissingCount: len(missing),
		MovedCount:   movedCount,
		MissingItems: missing,
		Scans:        scans,
		ScanDetails:  details,
	}, nil
}
