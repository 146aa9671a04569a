package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultNamespace = "default"

// GormStorage implements Storage using GORM + Postgres. Each client profile
// writes under its own namespace.
type GormStorage struct {
	db        *gorm.DB
	namespace string
}

// NewGormStorage opens the DB and runs auto-migrations.
func NewGormStorage(dsn, namespace string) (*GormStorage, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database URL is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return NewGormStorageWithDB(db, namespace)
}

// NewGormStorageWithDB wraps an already opened connection.
func NewGormStorageWithDB(db *gorm.DB, namespace string) (*GormStorage, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if err := db.AutoMigrate(&StorageEntryModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &GormStorage{db: db, namespace: namespace}, nil
}

// Get returns the value stored under key.
func (s *GormStorage) Get(key string) (string, bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", false, err
	}
	var model StorageEntryModel
	if err := s.db.First(&model, "namespace = ? AND key = ?", s.namespace, key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Value, true, nil
}

// Set upserts value under key.
func (s *GormStorage) Set(key, value string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	model := StorageEntryModel{
		Namespace: s.namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
}

// Remove deletes key.
func (s *GormStorage) Remove(key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	return s.db.Delete(&StorageEntryModel{}, "namespace = ? AND key = ?", s.namespace, key).Error
}

// Close releases the underlying connection pool.
func (s *GormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
