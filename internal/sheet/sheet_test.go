package sheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"chefmenu/pkg/domain"
)

func workbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if sheet != f.GetSheetName(0) {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

type fakeCreator struct {
	created []domain.Dish
	fail    error
}

func (c *fakeCreator) Create(_ context.Context, fields domain.Fields) (domain.Dish, []domain.Dish, error) {
	if c.fail != nil {
		return domain.Dish{}, nil, c.fail
	}
	n, err := fields.Normalize()
	if err != nil {
		return domain.Dish{}, nil, err
	}
	d := domain.Dish{ID: fmt.Sprint(len(c.created) + 1)}.Apply(n)
	c.created = append(c.created, d)
	return d, c.created, nil
}

func TestRead(t *testing.T) {
	buf := workbook(t, SheetName, [][]any{
		{"Name", "Description", "Course", "Price"},
		{"Soup", "Hot", "Appetizers", "4.50"},
		{"Bread", "", "Sides", "2.00"},
		{" Pie ", "Apple", "Dessert", "5"},
	})
	entries, rejects, err := Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[0].Row != 2 || entries[0].Fields != (domain.Fields{Name: "Soup", Description: "Hot", Course: "Appetizers", Price: "4.50"}) {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Row != 4 || entries[1].Fields.Name != "Pie" {
		t.Fatalf("values must be trimmed: %+v", entries[1])
	}
	if len(rejects) != 1 || rejects[0].Row != 3 || !strings.Contains(rejects[0].Error(), "missing description") {
		t.Fatalf("unexpected rejects %v", rejects)
	}
}

func TestRead_ColumnOrderAndFallbackSheet(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]any{
		{"price", "COURSE", "name", "description", "Notes"},
		{"12.99", "Mains", "Spaghetti", "Pasta", "house favourite"},
	})
	entries, rejects, err := Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := domain.Fields{Name: "Spaghetti", Description: "Pasta", Course: "Mains", Price: "12.99"}
	if len(rejects) != 0 || len(entries) != 1 || entries[0].Fields != want {
		t.Fatalf("unexpected read result %+v %v", entries, rejects)
	}
}

func TestRead_Errors(t *testing.T) {
	if _, _, err := Read(strings.NewReader("not a zip")); err == nil {
		t.Fatalf("expected error for non-workbook input")
	}
	buf := workbook(t, SheetName, [][]any{{"Name", "Course", "Price"}})
	if _, _, err := Read(buf); err == nil || !strings.Contains(err.Error(), "Description") {
		t.Fatalf("expected missing column error, got %v", err)
	}
	if _, _, err := Read(workbook(t, SheetName, nil)); err == nil {
		t.Fatalf("expected empty sheet error")
	}
}

func TestWriteThenRead(t *testing.T) {
	dishes := []domain.Dish{
		{ID: "1", Name: "Spaghetti", Description: "Classic Italian pasta dish", Course: domain.CourseMains, Price: "12.99"},
		{ID: "2", Name: "Cheesecake", Description: "Rich and creamy dessert", Course: domain.CourseDesserts, Price: "6.99"},
	}
	var buf bytes.Buffer
	if err := Write(&buf, dishes); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows, err := f.GetRows(SheetName)
	_ = f.Close()
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || strings.Join(rows[0], "|") != "ID|Name|Description|Course|Price" || rows[1][0] != "1" {
		t.Fatalf("unexpected export layout %v", rows)
	}

	entries, rejects, err := Read(&buf)
	if err != nil || len(rejects) != 0 {
		t.Fatalf("read back: %v %v", err, rejects)
	}
	for i, e := range entries {
		d := dishes[i]
		if e.Fields != (domain.Fields{Name: d.Name, Description: d.Description, Course: string(d.Course), Price: d.Price}) {
			t.Fatalf("row %d did not round trip: %+v", i, e.Fields)
		}
	}
}

func TestImport(t *testing.T) {
	buf := workbook(t, SheetName, [][]any{
		{"Name", "Description", "Course", "Price"},
		{"Soup", "Hot", "Appetizers", "4.50"},
		{"Bread", "Warm", "", "2.00"},
		{"Toast", "Crisp", "Brunch", "3.00"},
		{"Pie", "Apple", "Dessert", "5"},
	})
	c := &fakeCreator{}
	report, err := Import(context.Background(), c, buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(report.Created) != 2 || report.Created[1].Course != domain.CourseDesserts {
		t.Fatalf("unexpected created %+v", report.Created)
	}
	if len(report.Rejected) != 2 || report.Rejected[0].Row != 3 || report.Rejected[1].Row != 4 {
		t.Fatalf("unexpected rejected %v", report.Rejected)
	}
	if !domain.IsValidation(report.Rejected[1]) {
		t.Fatalf("repository rejection should keep the validation error")
	}
}

func TestImport_StopsOnStoreFailure(t *testing.T) {
	buf := workbook(t, SheetName, [][]any{
		{"Name", "Description", "Course", "Price"},
		{"Soup", "Hot", "Appetizers", "4.50"},
	})
	boom := domain.PersistenceError{Op: "save", Err: errors.New("disk full")}
	_, err := Import(context.Background(), &fakeCreator{fail: boom}, buf)
	if !domain.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestImport_UnreadableWorkbook(t *testing.T) {
	_, err := Import(context.Background(), &fakeCreator{}, strings.NewReader("plain text"))
	if !errors.Is(err, ErrWorkbook) {
		t.Fatalf("expected ErrWorkbook, got %v", err)
	}
}
