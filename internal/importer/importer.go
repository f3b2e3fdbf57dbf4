// Package importer loads items in bulk from an uploaded spreadsheet.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/assettrack/assettrack/internal/apperr"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/xuri/excelize/v2"
)

// Result summarizes one import run.
type Result struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// Items reads the first sheet of an xlsx workbook and creates one item per
// row. Expected columns: code, name, category, serial number, responsible
// person, purchase date (YYYY-MM-DD), price. The first row is a header and
// is skipped. Rows whose code already exists are counted as skipped; other
// bad rows are reported in Errors without aborting the run.
func Items(ctx context.Context, items *repo.ItemRepo, r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, apperr.Validation("cannot read workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, apperr.Validation("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Result{}, err
	}
	if len(rows) < 2 {
		return Result{}, apperr.Validation("workbook has no data rows")
	}

	var res Result
	for i, row := range rows[1:] {
		line := i + 2
		in, err := parseRow(row)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		if _, err := items.Create(ctx, in); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		res.Created++
	}
	return res, nil
}

func parseRow(row []string) (repo.ItemInput, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	in := repo.ItemInput{
		Code:              cell(0),
		Name:              cell(1),
		Category:          cell(2),
		SerialNumber:      cell(3),
		ResponsiblePerson: cell(4),
	}
	if in.Code == "" {
		return repo.ItemInput{}, errors.New("missing code")
	}
	if in.Name == "" {
		return repo.ItemInput{}, errors.New("missing name")
	}

	if s := cell(5); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return repo.ItemInput{}, fmt.Errorf("bad purchase date %q", s)
		}
		in.PurchaseDate = &t
	}
	if s := cell(6); s != "" {
		var p float64
		if _, err := fmt.Sscanf(s, "%f", &p); err != nil || p < 0 {
			return repo.ItemInput{}, fmt.Errorf("bad price %q", s)
		}
		in.PurchasePrice = &p
	}
	return in, nil
}
