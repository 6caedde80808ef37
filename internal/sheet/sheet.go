// Package sheet moves dishes in and out of .xlsx workbooks laid out as
// Name | Description | Course | Price, one dish per row.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"chefmenu/pkg/domain"
)

// SheetName is the preferred worksheet; the first sheet is used when absent.
const SheetName = "Menu"

var (
	importColumns = []string{"Name", "Description", "Course", "Price"}
	exportColumns = []string{"ID", "Name", "Description", "Course", "Price"}
)

// ErrWorkbook marks input that could not be read as a menu workbook.
var ErrWorkbook = errors.New("unreadable menu workbook")

// Entry is one complete data row. Row is the 1-based spreadsheet row.
type Entry struct {
	Row    int
	Fields domain.Fields
}

// RowError explains why a spreadsheet row was not imported.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e RowError) Unwrap() error { return e.Err }

// Read parses the workbook in r. Blank rows are skipped silently; rows with
// any of the four columns empty are reported as RowError and skipped. Field
// values are not validated here.
func Read(r io.Reader) ([]Entry, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	name := sheets[0]
	for _, s := range sheets {
		if s == SheetName {
			name = s
			break
		}
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", name)
	}
	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, nil, fmt.Errorf("sheet %s: %w", name, err)
	}

	var (
		entries []Entry
		rejects []RowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		values := make([]string, len(importColumns))
		blank := true
		for j, col := range cols {
			if col < len(row) {
				values[j] = strings.TrimSpace(row[col])
			}
			if values[j] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		if missing := firstEmpty(values); missing >= 0 {
			rejects = append(rejects, RowError{Row: rowNum, Err: fmt.Errorf("missing %s", strings.ToLower(importColumns[missing]))})
			continue
		}
		entries = append(entries, Entry{Row: rowNum, Fields: domain.Fields{
			Name:        values[0],
			Description: values[1],
			Course:      values[2],
			Price:       values[3],
		}})
	}
	return entries, rejects, nil
}

func headerIndex(header []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	cols := make([]int, len(importColumns))
	for i, c := range importColumns {
		idx, ok := pos[strings.ToLower(c)]
		if !ok {
			return nil, fmt.Errorf("header is missing column %s", c)
		}
		cols[i] = idx
	}
	return cols, nil
}

func firstEmpty(values []string) int {
	for i, v := range values {
		if v == "" {
			return i
		}
	}
	return -1
}

// Write renders dishes to an .xlsx workbook with an ID column in front of
// the import layout. Prices are written as text so they round-trip exactly.
func Write(w io.Writer, dishes []domain.Dish) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header := make([]any, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, d := range dishes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{d.ID, d.Name, d.Description, string(d.Course), d.Price}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write dish %s: %w", d.ID, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Creator is the slice of the dish repository an import needs.
type Creator interface {
	Create(ctx context.Context, fields domain.Fields) (domain.Dish, []domain.Dish, error)
}

// Report summarizes an import.
type Report struct {
	Created  []domain.Dish
	Rejected []RowError
}

// Import reads the workbook and creates one dish per complete row through c.
// Rows the repository rejects as invalid are reported and skipped; any other
// failure stops the import and is returned together with the partial report.
func Import(ctx context.Context, c Creator, r io.Reader) (Report, error) {
	entries, rejects, err := Read(r)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	report := Report{Rejected: rejects}
	for _, e := range entries {
		dish, _, err := c.Create(ctx, e.Fields)
		if domain.IsValidation(err) {
			report.Rejected = append(report.Rejected, RowError{Row: e.Row, Err: err})
			continue
		}
		if err != nil {
			return report, fmt.Errorf("import row %d: %w", e.Row, err)
		}
		report.Created = append(report.Created, dish)
	}
	sort.SliceStable(report.Rejected, func(i, j int) bool { return report.Rejected[i].Row < report.Rejected[j].Row })
	return report, nil
}
