package store

import "time"

// StorageEntryModel is one persisted key of one client namespace.
type StorageEntryModel struct {
	Namespace string    `gorm:"primaryKey"`
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (StorageEntryModel) TableName() string {
	return "client_storage_entries"
}
