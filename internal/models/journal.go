package models

import (
	"gorm.io/gorm"
)

// JournalRecord is one persisted registry lifecycle event: a callback
// being registered, invoked, failing, running out of invocations, idling
// out, or being deleted explicitly.
type JournalRecord struct {
	Key    string `json:"key" gorm:"index;not null"`
	Event  string `json:"event" gorm:"index;not null"`
	Detail string `json:"detail"`
	At     int64  `json:"at" gorm:"column:at;not null"`
	gorm.Model
}

// TableName specifies the table name for JournalRecord Model
func (JournalRecord) TableName() string {
	return "journal"
}
