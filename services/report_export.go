package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet    = "Laporan Harian"
	exportTimeFmt  = "2006-01-02 15:04:05"
	XLSXMIMEType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFirstRow = 4
)

var exportHeaders = []string{"No", "Nama", "Check-In", "Check-Out", "Latitude", "Longitude", "Bukti Foto"}

// ExportDailyReport renders DailyReport(f) as an XLSX workbook.
func (s *ReportService) ExportDailyReport(ctx context.Context, f ReportFilter) ([]byte, error) {
	rows, err := s.DailyReport(ctx, f)
	if err != nil {
		return nil, err
	}

	book := excelize.NewFile()
	defer book.Close()

	index, err := book.NewSheet(exportSheet)
	if err != nil {
		return nil, internalError("failed to build workbook", err)
	}
	book.SetActiveSheet(index)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return nil, internalError("failed to build workbook", err)
	}

	headerStyle, _ := book.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	book.SetCellValue(exportSheet, "A1", "LAPORAN PRESENSI HARIAN")
	book.MergeCell(exportSheet, "A1", "G1")
	book.SetCellStyle(exportSheet, "A1", "G1", headerStyle)
	book.SetCellValue(exportSheet, "A2", s.describeFilter(f))

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, exportFirstRow-1)
		book.SetCellValue(exportSheet, cell, h)
		book.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, r := range rows {
		line := exportFirstRow + i
		checkOut := ""
		if r.CheckOut != nil {
			checkOut = r.CheckOut.In(s.loc).Format(exportTimeFmt)
		}
		values := []interface{}{
			i + 1,
			r.User.Nama,
			r.CheckIn.In(s.loc).Format(exportTimeFmt),
			checkOut,
			deref(r.Latitude),
			deref(r.Longitude),
			deref(r.BuktiFoto),
		}
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := book.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, internalError("failed to write workbook row", err)
		}
	}

	book.SetColWidth(exportSheet, "A", "A", 6)
	book.SetColWidth(exportSheet, "B", "B", 28)
	book.SetColWidth(exportSheet, "C", "D", 20)
	book.SetColWidth(exportSheet, "E", "F", 14)
	book.SetColWidth(exportSheet, "G", "G", 36)

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, internalError("failed to write workbook", err)
	}
	return buf.Bytes(), nil
}

// ExportFileName names the attachment after the filtered range.
func ExportFileName(f ReportFilter) string {
	if f.TanggalMulai != "" && f.TanggalSelesai != "" {
		return fmt.Sprintf("laporan_presensi_%s_%s.xlsx", f.TanggalMulai, f.TanggalSelesai)
	}
	return "laporan_presensi.xlsx"
}

func (s *ReportService) describeFilter(f ReportFilter) string {
	desc := "Zona waktu: " + s.loc.String()
	if f.Nama != "" {
		desc += fmt.Sprintf(" | Nama: %s", f.Nama)
	}
	if f.TanggalMulai != "" && f.TanggalSelesai != "" {
		desc += fmt.Sprintf(" | Periode: %s s/d %s", f.TanggalMulai, f.TanggalSelesai)
	}
	return desc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
