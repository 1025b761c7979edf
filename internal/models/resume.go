package models

import (
	"time"
)

// Resume is the record produced by a successful extraction. It is never
// updated after creation.
type Resume struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName       string    `gorm:"type:text;not null" json:"file_name"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	DocumentHandle string    `gorm:"type:text" json:"-"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (Resume) TableName() string {
	return "resumes"
}

// CreditAccount holds the single ledger balance when the postgres store is used.
type CreditAccount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Balance   int       `gorm:"not null;check:balance >= 0" json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CreditAccount) TableName() string {
	return "credit_accounts"
}
