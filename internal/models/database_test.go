package models

import (
	"testing"

	"github.com/travelit/backend/internal/config"
	"gorm.io/gorm"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(&config.DatabaseConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Error("Open() should reject unknown drivers")
	}
}

func TestOpen_HandlesAreIndependent(t *testing.T) {
	open := func(name string) gorm.Migrator {
		t.Helper()
		db, err := Open(&config.DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "file:" + name + "?mode=memory&cache=shared",
			MaxOpenConns: 1,
		})
		if err != nil {
			t.Fatalf("Open(%s) error = %v", name, err)
		}
		sqlDB, _ := db.DB()
		t.Cleanup(func() { sqlDB.Close() })
		if name == "db_migrated" {
			if err := Migrate(db); err != nil {
				t.Fatalf("Migrate() error = %v", err)
			}
		}
		return db.Migrator()
	}

	migrated := open("db_migrated")
	fresh := open("db_fresh")

	for _, table := range []interface{}{&User{}, &Friendship{}, &TravelMap{}, &MapMembership{}, &Marker{}, &MapMarkerLink{}, &SystemLog{}} {
		if !migrated.HasTable(table) {
			t.Errorf("migrated handle is missing table for %T", table)
		}
	}
	if fresh.HasTable(&User{}) {
		t.Error("migrating one handle must not touch another")
	}
}
