package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

// Export formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

var exportHeader = []string{"Station", "Reference No", "Date", "Time", "Game", "Number", "Amount", "User"}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// WriteBets writes rows in the requested format, followed by a total row.
func WriteBets(w io.Writer, format string, rows []models.ExportRow) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLSX, "":
		return writeXLSX(w, rows)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func record(r models.ExportRow) []string {
	return []string{
		r.Station, r.ReferenceNo, r.Date, r.Time.Label(), r.Game.Label(), r.Number,
		strconv.FormatFloat(r.Amount, 'f', 2, 64), r.User,
	}
}

func sum(rows []models.ExportRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.Amount
	}
	return total
}

func writeCSV(w io.Writer, rows []models.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"Total", "", "", "", "", "", strconv.FormatFloat(sum(rows), 'f', 2, 64), ""}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Bets"

func writeXLSX(w io.Writer, rows []models.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &exportHeader); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{r.Station, r.ReferenceNo, r.Date, r.Time.Label(), r.Game.Label(), r.Number, r.Amount, r.User}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}
	totalCell, err := excelize.CoordinatesToCellName(1, len(rows)+2)
	if err != nil {
		return err
	}
	totalRow := []interface{}{"Total", "", "", "", "", "", sum(rows)}
	if err := f.SetSheetRow(sheetName, totalCell, &totalRow); err != nil {
		return err
	}
	return f.Write(w)
}
