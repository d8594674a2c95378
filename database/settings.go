package database

import (
	"errors"
	"fmt"
	"strings"
	"taskmind/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const SettingActiveModel = "active_model"

var (
	errNoDB     = errors.New("database not initialized")
	errEmptyKey = errors.New("empty setting key")
)

func settingKey(db *gorm.DB, key string) (string, error) {
	if db == nil {
		return "", errNoDB
	}
	if key = strings.TrimSpace(key); key == "" {
		return "", errEmptyKey
	}
	return key, nil
}

// GetSetting reads key. ok is false when it was never set.
func GetSetting(db *gorm.DB, key string) (value string, ok bool, err error) {
	if key, err = settingKey(db, key); err != nil {
		return "", false, err
	}

	var rows []models.Setting
	if err := db.Where("key = ?", key).Limit(1).Find(&rows).Error; err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

// SetSetting upserts key with the trimmed value.
func SetSetting(db *gorm.DB, key, value string) error {
	key, err := settingKey(db, key)
	if err != nil {
		return err
	}

	row := models.Setting{Key: key, Value: strings.TrimSpace(value)}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}
