package export

import (
	"fmt"
	"reflect"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook, in tab order.
const (
	SheetSales      = "Sales"
	SheetAuthors    = "Authors"
	SheetCategories = "Categories"
	SheetTimeSeries = "TimeSeries"
	SheetTopBooks   = "TopBooks"
	SheetTopMonthly = "TopMonthly"
)

const headerColor = "#1E4B87"

// writeWorkbook writes every dataset as a worksheet and returns the total
// number of data rows.
func writeWorkbook(path string, ds Datasets) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
	})
	if err != nil {
		return 0, err
	}

	sheets := []struct {
		name  string
		write func(sheet string) (int, error)
	}{
		{SheetSales, func(s string) (int, error) { return writeSheet(f, s, ds.Sales, headerStyle) }},
		{SheetAuthors, func(s string) (int, error) { return writeSheet(f, s, ds.Authors, headerStyle) }},
		{SheetCategories, func(s string) (int, error) { return writeSheet(f, s, ds.Categories, headerStyle) }},
		{SheetTimeSeries, func(s string) (int, error) { return writeSheet(f, s, ds.TimeSeries, headerStyle) }},
		{SheetTopBooks, func(s string) (int, error) { return writeSheet(f, s, ds.TopBooks, headerStyle) }},
		{SheetTopMonthly, func(s string) (int, error) { return writeSheet(f, s, ds.TopMonthly, headerStyle) }},
	}

	total := 0
	for i, sheet := range sheets {
		idx, err := f.NewSheet(sheet.name)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		n, err := sheet.write(sheet.name)
		if err != nil {
			return 0, fmt.Errorf("sheet %s: %w", sheet.name, err)
		}
		total += n
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return 0, err
	}
	if err := f.SaveAs(path); err != nil {
		return 0, err
	}
	return total, nil
}

// writeSheet writes a header row from the csv tags of T followed by one
// row per element. T must be a flat struct with every field tagged.
func writeSheet[T any](f *excelize.File, sheet string, rows []T, headerStyle int) (int, error) {
	var zero T
	header, err := csvutil.Header(zero, "csv")
	if err != nil {
		return 0, err
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return 0, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return 0, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return 0, err
	}

	for i, row := range rows {
		v := reflect.ValueOf(row)
		values := make([]any, v.NumField())
		for j := range values {
			values[j] = v.Field(j).Interface()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}
