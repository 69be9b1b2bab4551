package models

import "time"

// Contact is a one-way entry in a user's contact list. A pair is unique
// and a user cannot add themselves.
type Contact struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_contact_pair;not null" json:"user_id"`
	ContactUserID uint      `gorm:"uniqueIndex:idx_contact_pair;not null" json:"contact_user_id"`
	Alias         string    `gorm:"size:80" json:"alias"`
	CreatedAt     time.Time `json:"created_at"`
}
