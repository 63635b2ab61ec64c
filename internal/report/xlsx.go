package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"calinsights/internal/insights"
)

const defaultSheet = "Sheet1"

// XLSX writes a workbook with one sheet per insight.
func XLSX(w io.Writer, r insights.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range r.Names() {
		idx, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		res, _ := r.Get(name)
		var rows [][]any
		switch res := res.(type) {
		case insights.DailyTotals:
			rows = append(rows, []any{"Date", "Minutes"})
			for _, day := range res.Days() {
				rows = append(rows, []any{day.String(), res[day].Minutes()})
			}
			rows = append(rows, []any{"Total", res.Total().Minutes()})
		case insights.PersonTotals:
			rows = append(rows, []any{"Attendee", "Minutes"})
			for _, p := range res {
				rows = append(rows, []any{p.Key, p.Duration.Minutes()})
			}
		}
		if err := writeRows(f, name, rows); err != nil {
			return err
		}
	}

	if len(r.Names()) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("delete default sheet: %w", err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
