package database

import (
	"path/filepath"
	"testing"

	"github.com/enjoys-in/airsend-webmail/config"
)

func TestCreateDBConnectionSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mail.db")
	db, err := CreateDBConnection(config.DBConfig{Driver: DriverSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("CreateDBConnection() = %v, want nil", err)
	}
	defer db.Close()

	for _, table := range []string{"users", "emails", "email_recipients", "sessions"} {
		var n int
		err := db.Conn.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		if err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if n != 1 {
			t.Errorf("table %s: found %d, want 1", table, n)
		}
	}

	// Migrating an up-to-date schema is a no-op.
	if err := migrateUp(db.Conn); err != nil {
		t.Errorf("second migrateUp() = %v, want nil", err)
	}
}

func TestCreateDBConnectionUnknownDriver(t *testing.T) {
	if _, err := CreateDBConnection(config.DBConfig{Driver: "oracle"}); err == nil {
		t.Error("CreateDBConnection(oracle) succeeded, want error")
	}
}
