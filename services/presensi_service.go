package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/presensi/presensi-server/models"
	"github.com/presensi/presensi-server/utils"
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CheckInInput carries the optional data captured at check-in.
type CheckInInput struct {
	Latitude  *string
	Longitude *string
	PhotoRef  *string
}

// UpdateInput lists the fields an edit may overwrite. Absent fields keep their value.
type UpdateInput struct {
	CheckIn  Optional[time.Time] `json:"checkIn"`
	CheckOut Optional[time.Time] `json:"checkOut"`
	Nama     Optional[string]    `json:"nama"`
}

// Empty reports whether none of the editable fields was supplied.
func (in UpdateInput) Empty() bool {
	return !in.CheckIn.Set && !in.CheckOut.Set && !in.Nama.Set
}

// PresensiService owns the check-in/check-out lifecycle of attendance records.
type PresensiService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPresensiService creates a new PresensiService instance.
func NewPresensiService(db *gorm.DB) *PresensiService {
	return &PresensiService{db: db, now: time.Now}
}

// WithClock replaces the time source, mostly for tests.
func (s *PresensiService) WithClock(now func() time.Time) *PresensiService {
	s.now = now
	return s
}

// CheckIn opens a new session for userID. It fails with ErrOpenSessionExists when one is already open.
func (s *PresensiService) CheckIn(ctx context.Context, userID uint, in CheckInInput) (*models.Presensi, error) {
	var rec models.Presensi
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		open, err := findOpen(tx, userID, 0)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrOpenSessionExists
		}

		nama := user.Nama
		rec = models.Presensi{
			UserID:    userID,
			Nama:      &nama,
			CheckIn:   s.now().UTC(),
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
			BuktiFoto: in.PhotoRef,
		}
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrOpenSessionExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, wrapInternal("check-in failed", err)
	}
	utils.Sugar.Debugw("check-in recorded", "user_id", userID, "presensi_id", rec.ID)
	return &rec, nil
}

// CheckOut closes the caller's open session.
func (s *PresensiService) CheckOut(ctx context.Context, userID uint) (*models.Presensi, error) {
	var rec *models.Presensi
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open, err := findOpen(tx, userID, 0)
		if err != nil {
			return err
		}
		if open == nil {
			return ErrNoOpenSession
		}

		out := s.now().UTC()
		if out.Before(open.CheckIn) {
			out = open.CheckIn
		}
		open.CheckOut = &out
		if err := tx.Omit(clause.Associations).Save(open).Error; err != nil {
			return err
		}
		rec = open
		return nil
	})
	if err != nil {
		return nil, wrapInternal("check-out failed", err)
	}
	return rec, nil
}

// Update overwrites the supplied fields of a record. Owners may edit their own records, admins any.
func (s *PresensiService) Update(ctx context.Context, actor Actor, id uint, in UpdateInput) (*models.Presensi, error) {
	if in.Empty() {
		return nil, ErrEmptyUpdate
	}
	if in.CheckIn.Set && in.CheckIn.Null {
		return nil, validationError("checkIn cannot be null")
	}

	var rec models.Presensi
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		if rec.UserID != actor.UserID && !actor.IsAdmin() {
			return ErrNotOwner
		}

		wasOpen := rec.IsOpen()
		if in.CheckIn.Set {
			rec.CheckIn = in.CheckIn.Value.UTC()
		}
		if in.CheckOut.Set {
			if in.CheckOut.Null {
				rec.CheckOut = nil
			} else {
				out := in.CheckOut.Value.UTC()
				rec.CheckOut = &out
			}
		}
		if in.Nama.Set {
			if in.Nama.Null {
				rec.Nama = nil
			} else {
				nama := utils.SanitizeText(in.Nama.Value)
				rec.Nama = &nama
			}
		}

		if rec.CheckOut != nil && rec.CheckOut.Before(rec.CheckIn) {
			return validationError("checkOut cannot be earlier than checkIn")
		}
		if !wasOpen && rec.IsOpen() {
			other, err := findOpen(tx, rec.UserID, rec.ID)
			if err != nil {
				return err
			}
			if other != nil {
				return ErrOpenSessionExists
			}
		}

		if err := tx.Omit(clause.Associations).Save(&rec).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrOpenSessionExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, wrapInternal("update failed", err)
	}
	return &rec, nil
}

// Delete removes a record owned by the actor and returns it so attached files can be cleaned up.
func (s *PresensiService) Delete(ctx context.Context, actor Actor, id uint) (*models.Presensi, error) {
	var rec models.Presensi
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		if rec.UserID != actor.UserID {
			return ErrNotOwner
		}
		return tx.Delete(&models.Presensi{}, rec.ID).Error
	})
	if err != nil {
		return nil, wrapInternal("delete failed", err)
	}
	return &rec, nil
}

// Status returns the caller's open session, or nil when none is open.
func (s *PresensiService) Status(ctx context.Context, userID uint) (*models.Presensi, error) {
	open, err := findOpen(s.db.WithContext(ctx), userID, 0)
	if err != nil {
		return nil, internalError("failed to load status", err)
	}
	return open, nil
}

// History lists the caller's records, newest first.
func (s *PresensiService) History(ctx context.Context, userID uint, page, pageSize int) ([]models.Presensi, Pagination, error) {
	page, pageSize = NormalizePage(page, pageSize)
	q := s.db.WithContext(ctx).Model(&models.Presensi{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, internalError("failed to count records", err)
	}
	var recs []models.Presensi
	if err := q.Order("check_in DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&recs).Error; err != nil {
		return nil, Pagination{}, internalError("failed to list records", err)
	}
	return recs, NewPagination(page, pageSize, total), nil
}

// findOpen returns the most recent open record of userID, skipping exceptID when non-zero.
func findOpen(tx *gorm.DB, userID, exceptID uint) (*models.Presensi, error) {
	q := tx.Where("user_id = ? AND check_out IS NULL", userID)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var rec models.Presensi
	if err := q.Order("check_in DESC").First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// wrapInternal passes service errors through and wraps anything else as KindInternal.
func wrapInternal(msg string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internalError(msg, err)
}
