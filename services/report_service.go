package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/presensi/presensi-server/models"
)

const dateLayout = "2006-01-02"

// ReportFilter narrows the daily report. Dates use the YYYY-MM-DD layout.
type ReportFilter struct {
	Nama           string `form:"nama" binding:"omitempty,max=100"`
	TanggalMulai   string `form:"tanggalMulai" binding:"omitempty,datetime=2006-01-02"`
	TanggalSelesai string `form:"tanggalSelesai" binding:"omitempty,datetime=2006-01-02"`
}

type ReportUser struct {
	ID   uint   `json:"id"`
	Nama string `json:"nama"`
}

// ReportRow is one attendance record joined with its owner.
type ReportRow struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"userId"`
	Nama      *string    `json:"nama"`
	CheckIn   time.Time  `json:"checkIn"`
	CheckOut  *time.Time `json:"checkOut"`
	Latitude  *string    `json:"latitude"`
	Longitude *string    `json:"longitude"`
	BuktiFoto *string    `json:"buktiFoto"`
	User      ReportUser `json:"user"`
}

type DateReport struct {
	ReportDate   string      `json:"reportDate"`
	TotalRecords int         `json:"totalRecords"`
	Data         []ReportRow `json:"data"`
}

// ReportService answers the admin report queries. Calendar days are resolved in loc.
type ReportService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewReportService(db *gorm.DB, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{db: db, loc: loc, now: time.Now}
}

// WithClock replaces the time source used to resolve "today".
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

func (s *ReportService) Location() *time.Location {
	return s.loc
}

// DailyReport lists records matching the owner name substring and, when both bounds are set, the date range.
func (s *ReportService) DailyReport(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	q := s.baseQuery(ctx)

	if nama := strings.TrimSpace(f.Nama); nama != "" {
		q = q.Where("LOWER(users.nama) LIKE LOWER(?) ESCAPE '!'", "%"+escapeLike(nama)+"%")
	}

	if f.TanggalMulai != "" && f.TanggalSelesai != "" {
		from, err := s.parseDay(f.TanggalMulai)
		if err != nil {
			return nil, err
		}
		to, err := s.parseDay(f.TanggalSelesai)
		if err != nil {
			return nil, err
		}
		if from.After(to) {
			return nil, validationError("tanggalMulai must not be after tanggalSelesai")
		}
		q = q.Where("presensi.check_in >= ? AND presensi.check_in < ?", from.UTC(), to.AddDate(0, 0, 1).UTC())
	}

	return s.fetch(q)
}

// DailyReportByDate lists the records checked in during one calendar day, today when date is empty.
func (s *ReportService) DailyReportByDate(ctx context.Context, date string) (*DateReport, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		n := s.now().In(s.loc)
		day = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
	} else {
		var err error
		if day, err = s.parseDay(date); err != nil {
			return nil, err
		}
	}

	q := s.baseQuery(ctx).
		Where("presensi.check_in >= ? AND presensi.check_in < ?", day.UTC(), day.AddDate(0, 0, 1).UTC())
	rows, err := s.fetch(q)
	if err != nil {
		return nil, err
	}
	return &DateReport{
		ReportDate:   day.Format(dateLayout),
		TotalRecords: len(rows),
		Data:         rows,
	}, nil
}

func (s *ReportService) baseQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Presensi{}).
		Select("presensi.*").
		Joins("JOIN users ON users.id = presensi.user_id").
		Preload("User")
}

func (s *ReportService) fetch(q *gorm.DB) ([]ReportRow, error) {
	var recs []models.Presensi
	if err := q.Order("presensi.check_in ASC").Order("presensi.id ASC").Find(&recs).Error; err != nil {
		return nil, internalError("failed to load report", err)
	}
	rows := make([]ReportRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, toReportRow(r))
	}
	return rows, nil
}

func (s *ReportService) parseDay(v string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(v), s.loc)
	if err != nil {
		return time.Time{}, validationError("invalid date " + v + ", expected YYYY-MM-DD")
	}
	return t, nil
}

func toReportRow(r models.Presensi) ReportRow {
	return ReportRow{
		ID:        r.ID,
		UserID:    r.UserID,
		Nama:      r.Nama,
		CheckIn:   r.CheckIn,
		CheckOut:  r.CheckOut,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		BuktiFoto: r.BuktiFoto,
		User:      ReportUser{ID: r.User.ID, Nama: r.User.Nama},
	}
}

// escapeLike escapes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
