package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/presensi/presensi-server/models"
)

var wib = time.FixedZone("WIB", 7*3600)

func rowIDs(rows []ReportRow) []uint {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestDailyReportByDateUsesLocalDay(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "Ana", models.RoleUser)
	midnight := seedRecord(t, db, u, time.Date(2024, 3, 1, 0, 0, 0, 0, wib))
	late := seedRecord(t, db, u, time.Date(2024, 3, 1, 23, 59, 59, 0, wib))
	seedRecord(t, db, u, time.Date(2024, 3, 2, 0, 0, 1, 0, wib))
	seedRecord(t, db, u, time.Date(2024, 2, 29, 23, 59, 59, 0, wib))

	svc := NewReportService(db, wib)
	report, err := svc.DailyReportByDate(context.Background(), "2024-03-01")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", report.ReportDate)
	assert.Equal(t, 2, report.TotalRecords)
	assert.Equal(t, []uint{midnight.ID, late.ID}, rowIDs(report.Data))
}

func TestDailyReportByDateDefaultsToToday(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "Ana", models.RoleUser)
	// 2024-03-05 20:00 UTC is already 2024-03-06 in WIB
	now := time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)
	today := seedRecord(t, db, u, time.Date(2024, 3, 6, 2, 0, 0, 0, wib))
	seedRecord(t, db, u, time.Date(2024, 3, 5, 9, 0, 0, 0, wib))

	svc := NewReportService(db, wib).WithClock(fixedClock(now))
	report, err := svc.DailyReportByDate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", report.ReportDate)
	assert.Equal(t, []uint{today.ID}, rowIDs(report.Data))
}

func TestDailyReportByDateRejectsBadDate(t *testing.T) {
	svc := NewReportService(newTestDB(t), wib)
	_, err := svc.DailyReportByDate(context.Background(), "01-03-2024")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestDailyReportNameFilter(t *testing.T) {
	db := newTestDB(t)
	ana := seedRecord(t, db, seedUser(t, db, "Ana", models.RoleUser), base)
	juliana := seedRecord(t, db, seedUser(t, db, "Juliana", models.RoleUser), base.Add(time.Hour))
	seedRecord(t, db, seedUser(t, db, "Budi", models.RoleUser), base.Add(2*time.Hour))

	svc := NewReportService(db, wib)
	rows, err := svc.DailyReport(context.Background(), ReportFilter{Nama: "ana"})
	require.NoError(t, err)
	assert.Equal(t, []uint{ana.ID, juliana.ID}, rowIDs(rows))
	assert.Equal(t, "Ana", rows[0].User.Nama)

	rows, err = svc.DailyReport(context.Background(), ReportFilter{Nama: "%"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = svc.DailyReport(context.Background(), ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestDailyReportDateRange(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "Ana", models.RoleUser)
	first := seedRecord(t, db, u, time.Date(2024, 3, 1, 8, 0, 0, 0, wib))
	last := seedRecord(t, db, u, time.Date(2024, 3, 3, 23, 30, 0, 0, wib))
	seedRecord(t, db, u, time.Date(2024, 3, 4, 0, 0, 0, 0, wib))
	seedRecord(t, db, u, time.Date(2024, 2, 28, 8, 0, 0, 0, wib))

	svc := NewReportService(db, wib)
	rows, err := svc.DailyReport(context.Background(), ReportFilter{TanggalMulai: "2024-03-01", TanggalSelesai: "2024-03-03"})
	require.NoError(t, err)
	assert.Equal(t, []uint{first.ID, last.ID}, rowIDs(rows))

	// a single bound is ignored
	rows, err = svc.DailyReport(context.Background(), ReportFilter{TanggalMulai: "2024-03-01"})
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = svc.DailyReport(context.Background(), ReportFilter{TanggalMulai: "2024-03-05", TanggalSelesai: "2024-03-01"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.DailyReport(context.Background(), ReportFilter{TanggalMulai: "2024-13-01", TanggalSelesai: "2024-03-01"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestReportRoundTrip(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "Ana", models.RoleUser)
	svc := NewPresensiService(db).WithClock(fixedClock(base))
	lat, lng, foto := "-6.2", "106.8", "20240301-a.jpg"
	created, err := svc.CheckIn(context.Background(), u.ID, CheckInInput{Latitude: &lat, Longitude: &lng, PhotoRef: &foto})
	require.NoError(t, err)

	rows, err := NewReportService(db, wib).DailyReport(context.Background(), ReportFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, *created.Nama, *got.Nama)
	assert.True(t, created.CheckIn.Equal(got.CheckIn))
	assert.Nil(t, got.CheckOut)
	assert.Equal(t, lat, *got.Latitude)
	assert.Equal(t, lng, *got.Longitude)
	assert.Equal(t, foto, *got.BuktiFoto)
	assert.Equal(t, ReportUser{ID: u.ID, Nama: "Ana"}, got.User)
}

func TestExportDailyReport(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "Juliana", models.RoleUser)
	seedRecord(t, db, u, time.Date(2024, 3, 1, 8, 0, 0, 0, wib))

	svc := NewReportService(db, wib)
	body, err := svc.ExportDailyReport(context.Background(), ReportFilter{Nama: "jul"})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, exportFirstRow)
	assert.Equal(t, exportHeaders, rows[exportFirstRow-2])
	data := rows[exportFirstRow-1]
	assert.Equal(t, "1", data[0])
	assert.Equal(t, "Juliana", data[1])
	assert.Equal(t, "2024-03-01 08:00:00", data[2])
	assert.Equal(t, "2024-03-01 16:00:00", data[3])

	assert.Equal(t, "laporan_presensi_2024-03-01_2024-03-02.xlsx",
		ExportFileName(ReportFilter{TanggalMulai: "2024-03-01", TanggalSelesai: "2024-03-02"}))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "a!%b!_c!!", escapeLike("a%b_c!"))
}
