package models

import (
	"time"

	"gorm.io/gorm"
)

// Presensi is one attendance session: a check-in and, once closed, its check-out.
//
// OpenSlot mirrors UserID while CheckOut is nil and is NULL afterwards. Its unique
// index lets the database itself reject a second open session for the same user.
type Presensi struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	Nama      *string    `gorm:"size:100" json:"nama"`
	CheckIn   time.Time  `gorm:"index;not null" json:"checkIn"`
	CheckOut  *time.Time `json:"checkOut"`
	OpenSlot  *uint      `gorm:"uniqueIndex:idx_presensi_open_slot" json:"-"`
	Latitude  *string    `gorm:"size:32" json:"latitude"`
	Longitude *string    `gorm:"size:32" json:"longitude"`
	BuktiFoto *string    `gorm:"size:255" json:"buktiFoto"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	User      User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Presensi) TableName() string {
	return "presensi"
}

// IsOpen reports whether the session has not been checked out yet.
func (p Presensi) IsOpen() bool {
	return p.CheckOut == nil
}

// BeforeSave keeps OpenSlot in step with CheckOut on every create and save.
func (p *Presensi) BeforeSave(tx *gorm.DB) error {
	if p.CheckOut == nil {
		slot := p.UserID
		p.OpenSlot = &slot
	} else {
		p.OpenSlot = nil
	}
	return nil
}
