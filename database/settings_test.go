package database

import (
	"taskmind/models"
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}

	if _, ok, err := GetSetting(db, SettingActiveModel); err != nil || ok {
		t.Fatalf("expected missing setting, ok=%v err=%v", ok, err)
	}

	if err := SetSetting(db, SettingActiveModel, " ft:gemma-1 "); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := SetSetting(db, SettingActiveModel, "ft:gemma-2"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}

	value, ok, err := GetSetting(db, SettingActiveModel)
	if err != nil || !ok || value != "ft:gemma-2" {
		t.Fatalf("GetSetting = %q ok=%v err=%v", value, ok, err)
	}

	var rows int64
	if err := db.Model(&models.Setting{}).Count(&rows).Error; err != nil || rows != 1 {
		t.Fatalf("expected one upserted row, got %d (err=%v)", rows, err)
	}
}

func TestSettingsRejectEmptyKey(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	if err := SetSetting(db, "  ", "x"); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, _, err := GetSetting(nil, "k"); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
