package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/presensi/presensi-server/config"
	"github.com/presensi/presensi-server/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(config.AppConfig{
		DBDriver:    "sqlite",
		DatabaseURI: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel:    "silent",
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Presensi{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, nama, role string) *models.User {
	t.Helper()
	u := &models.User{
		Nama:         nama,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// seedRecord inserts a closed record checked in at in.
func seedRecord(t *testing.T, db *gorm.DB, user *models.User, in time.Time) *models.Presensi {
	t.Helper()
	out := in.Add(8 * time.Hour)
	nama := user.Nama
	p := &models.Presensi{UserID: user.ID, Nama: &nama, CheckIn: in.UTC(), CheckOut: &out}
	require.NoError(t, db.Omit("User").Create(p).Error)
	return p
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
